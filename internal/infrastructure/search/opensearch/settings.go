package opensearch

// Index settings and mappings for the two serving indices.  The name field
// carries a keyword sub-field so exact lookups and fuzzy queries can share
// one mapping.

// CompanyIndexBody is the settings-and-mappings body for company-product
// indices.
var CompanyIndexBody = []byte(`{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 1
  },
  "mappings": {
    "properties": {
      "name": {
        "type": "text",
        "fields": {
          "keyword": {"type": "keyword"}
        }
      },
      "products": {
        "type": "nested",
        "properties": {
          "name": {"type": "text"},
          "description": {"type": "text"}
        }
      }
    }
  }
}`)

// PatentIndexBody is the settings-and-mappings body for patent indices.
var PatentIndexBody = []byte(`{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 1
  },
  "mappings": {
    "properties": {
      "patent_id": {"type": "keyword"},
      "publication_number": {"type": "keyword"},
      "title": {"type": "text"},
      "claims": {"type": "text"}
    }
  }
}`)
