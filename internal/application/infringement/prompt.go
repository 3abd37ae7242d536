// Package infringement implements the assessment pipeline: prompt
// construction, model invocation, output normalization, and report
// assembly.
package infringement

import (
	"fmt"
	"strings"

	"github.com/patlytics/patlytics/internal/domain/catalog"
)

// SystemPrompt primes the model for the analysis task.  The instruction to
// return JSON lives here rather than per-request so every backend sends the
// same framing.
const SystemPrompt = "You are a patent analysis expert. Analyze potential patent " +
	"infringement based on the given information. Your response must be a valid JSON object."

// BuildPrompt renders the analysis prompt for one patent/company pair.  The
// output is fully determined by its inputs: products are enumerated in
// portfolio order starting at 1, claims in claim order starting at 1, and
// no timestamps or random identifiers appear anywhere.  Identical inputs
// always produce byte-identical prompts.
func BuildPrompt(patent *catalog.PatentRecord, company *catalog.CompanyProfile) string {
	var b strings.Builder

	b.WriteString("Patent Title: ")
	b.WriteString(patent.Title)
	b.WriteString("\n\nPatent Claims:\n")
	for i, claim := range patent.Claims {
		fmt.Fprintf(&b, "%d. %s\n", i+1, claim)
	}

	b.WriteString("\nCompany: ")
	b.WriteString(company.Name)
	b.WriteString("\nProducts to Analyze:\n")
	for i, product := range company.Products {
		fmt.Fprintf(&b, "\nProduct %d:\nName: %s\nDescription: %s\n",
			i+1, product.Name, product.Description)
	}

	b.WriteString(`
Task: Analyze each product for potential patent infringement.
Consider:
1. How each product might implement the patent claims
2. The technical overlap between products and patent claims
3. The likelihood of infringement based on available information

Return a JSON object with the following structure:
{
    "analyses": [
        {
            "product_name": "name of product",
            "infringement_likelihood": "High/Medium/Low",
            "claims_at_issue": ["specific claim numbers that might be infringed"],
            "explanation": "Detailed explanation of potential infringement",
            "specific_features": ["optional list of product features at issue"]
        }
    ],
    "overall_risk_assessment": "Summary of the company's overall exposure"
}
Include one analyses entry for each product, in the order listed above.`)

	return b.String()
}
