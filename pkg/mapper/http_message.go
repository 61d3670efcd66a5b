package mapper

import (
	"strings"

	"go-exchange/pkg/models"
)

// Message headers used by the HTTP mappers.
const (
	HeaderHTTPMethod  = "http.method"
	HeaderHTTPURI     = "http.uri"
	HeaderHTTPVersion = "http.version"

	// QueryHeaderPrefix namespaces query parameters so they never collide with HTTP headers.
	QueryHeaderPrefix = "query."

	// LegacyHTTPVersion is assumed when the request line carries no version.
	LegacyHTTPVersion = "0.9"
)

// HTTPMessage is a typed view over a message carrying an HTTP request.
type HTTPMessage struct {
	*models.Message
}

// AsHTTP returns the HTTP view of msg.
func AsHTTP(msg *models.Message) HTTPMessage {
	return HTTPMessage{Message: msg}
}

func (m HTTPMessage) Method() string      { return m.Header(HeaderHTTPMethod, "") }
func (m HTTPMessage) HasMethod() bool     { return m.HasHeader(HeaderHTTPMethod) }
func (m HTTPMessage) URI() string         { return m.Header(HeaderHTTPURI, "") }
func (m HTTPMessage) HasURI() bool        { return m.HasHeader(HeaderHTTPURI) }
func (m HTTPMessage) Version() string     { return m.Header(HeaderHTTPVersion, "") }
func (m HTTPMessage) HasVersion() bool    { return m.HasHeader(HeaderHTTPVersion) }
func (m HTTPMessage) SetURI(uri string)   { m.SetHeader(HeaderHTTPURI, uri) }
func (m HTTPMessage) SetVersion(v string) { m.SetHeader(HeaderHTTPVersion, v) }

// SetMethod stores the method upper-cased.
func (m HTTPMessage) SetMethod(method string) {
	m.SetHeader(HeaderHTTPMethod, strings.ToUpper(method))
}

// QueryHeader returns the query parameter or def.
func (m HTTPMessage) QueryHeader(name, def string) string {
	return m.Header(QueryHeaderPrefix+name, def)
}

// HasQueryHeader reports whether the query parameter is set.
func (m HTTPMessage) HasQueryHeader(name string) bool {
	return m.HasHeader(QueryHeaderPrefix + name)
}

// SetQueryHeader stores a query parameter.
func (m HTTPMessage) SetQueryHeader(name, value string) (prev string, existed bool) {
	return m.SetHeader(QueryHeaderPrefix+name, value)
}

// QueryHeaders returns every query parameter keyed by its bare name.
func (m HTTPMessage) QueryHeaders() map[string]string {
	out := make(map[string]string)
	for name, value := range m.Headers() {
		if key, ok := strings.CutPrefix(name, QueryHeaderPrefix); ok {
			out[key] = value
		}
	}
	return out
}
