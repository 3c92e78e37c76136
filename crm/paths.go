package crm

import (
	"fmt"
	"net/url"
)

// PathBuilder builds credentialed request URLs for a tenant's slice of the
// CRM REST surface. It is an interface so alternate CRM backends and test
// doubles can be substituted.
type PathBuilder interface {
	Index(resource string) string
	Create(resource string) string
	Update(resource string, id int64) string
	Delete(resource string, id int64) string
	Match(resource string, params url.Values) string
}

// TenantPaths builds URLs of the form
//
//	{protocol}://{slug}.{domain}/api/v1/{resource}[/{id}][/match]?access_token={token}
type TenantPaths struct {
	protocol    string
	domain      string
	slug        string
	accessToken string
}

// NewTenantPaths creates a path builder bound to one tenant's credentials
func NewTenantPaths(protocol, domain, slug, accessToken string) *TenantPaths {
	if protocol == "" {
		protocol = "https"
	}
	return &TenantPaths{
		protocol:    protocol,
		domain:      domain,
		slug:        slug,
		accessToken: accessToken,
	}
}

// Index returns the collection URL for a resource
func (p *TenantPaths) Index(resource string) string {
	return p.build(resource, url.Values{})
}

// Create returns the collection URL for a resource
func (p *TenantPaths) Create(resource string) string {
	return p.build(resource, url.Values{})
}

// Update returns the member URL for a resource id
func (p *TenantPaths) Update(resource string, id int64) string {
	return p.build(fmt.Sprintf("%s/%d", resource, id), url.Values{})
}

// Delete returns the member URL for a resource id
func (p *TenantPaths) Delete(resource string, id int64) string {
	return p.build(fmt.Sprintf("%s/%d", resource, id), url.Values{})
}

// Match returns the match URL for a resource with the match parameters
// encoded in the query string
func (p *TenantPaths) Match(resource string, params url.Values) string {
	query := url.Values{}
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	return p.build(resource+"/match", query)
}

func (p *TenantPaths) build(path string, query url.Values) string {
	query.Set("access_token", p.accessToken)
	return fmt.Sprintf("%s://%s.%s/api/v1/%s?%s",
		p.protocol, p.slug, p.domain, path, query.Encode())
}
