package purview

// Term is a glossary term as the catalog returns it; Domain holds the domain id
type Term struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Domain      string `json:"domain"`
}

// CreateTermRequest is the POST /terms body; Domain must already be a resolved id
type CreateTermRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Domain      string `json:"domain"`
}

// BusinessDomain is a governance domain
type BusinessDomain struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// page is the collection envelope shared by list endpoints
type page[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"nextLink,omitempty"`
}
