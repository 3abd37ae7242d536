// Package testutil provides shared fixtures for unit tests.
package testutil

import (
	"github.com/patlytics/patlytics/internal/domain/catalog"
)

// Patent returns a small patent fixture.
func Patent() *catalog.PatentRecord {
	return &catalog.PatentRecord{
		PatentID:          "12345",
		PublicationNumber: "US-12345-B2",
		Title:             "Adaptive Battery Charging System",
		Claims: []string{
			"A charging system comprising a controller configured to vary charge current.",
			"The system of claim 1 wherein the controller monitors cell temperature.",
			"The system of claim 1 further comprising a wireless telemetry module.",
		},
	}
}

// Company returns a company fixture with two products.
func Company() *catalog.CompanyProfile {
	return &catalog.CompanyProfile{
		Name: "Test Company",
		Products: []catalog.Product{
			{Name: "PowerMax Charger", Description: "Fast charger with adaptive current control."},
			{Name: "VoltGuard Monitor", Description: "Battery telemetry and health monitoring unit."},
		},
	}
}

// CompanyNamed returns a company fixture with the given name and a single
// product.
func CompanyNamed(name string) *catalog.CompanyProfile {
	return &catalog.CompanyProfile{
		Name: name,
		Products: []catalog.Product{
			{Name: name + " Product", Description: "Flagship product."},
		},
	}
}
