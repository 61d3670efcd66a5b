package mapper

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"go-exchange/pkg/errs"
	"go-exchange/pkg/models"
	"go-exchange/pkg/stream"
)

var (
	// METHOD SP URI [ "?" QUERY ] [ SP "HTTP/" VERSION ]
	requestLinePattern = regexp.MustCompile(`(?i)^([a-z]+)\s+([^\s?]+)(?:\?(\S+))?(?:\s+HTTP/(1\.0|1\.1))?$`)
	// NAME ":" *SP VALUE
	headerLinePattern = regexp.MustCompile(`(?i)^([a-z-]+):\s*(.+)$`)
	// Names emitted as HTTP headers on encode. Namespaced headers never match.
	headerNamePattern = regexp.MustCompile(`^[A-Za-z-]+$`)
)

// HTTPRequestMapperConfig configures the HTTP request codec.
type HTTPRequestMapperConfig struct {
	// MaxLineLength bounds every request line. Defaults to DefaultMaxLineLength.
	MaxLineLength int
	// StrictHeaderSection rejects requests whose header section ends at EOF
	// without the blank line. By default they are accepted without a body.
	StrictHeaderSection bool
}

// HTTPRequestMapper decodes and encodes HTTP/0.9, 1.0 and 1.1 requests.
type HTTPRequestMapper struct {
	maxLineLength int
	strict        bool
}

var _ Mapper = (*HTTPRequestMapper)(nil)

func NewHTTPRequestMapper(cfg HTTPRequestMapperConfig) *HTTPRequestMapper {
	if cfg.MaxLineLength <= 0 {
		cfg.MaxLineLength = DefaultMaxLineLength
	}
	return &HTTPRequestMapper{
		maxLineLength: cfg.MaxLineLength,
		strict:        cfg.StrictHeaderSection,
	}
}

// MaxLineLength returns the configured line bound.
func (m *HTTPRequestMapper) MaxLineLength() int { return m.maxLineLength }

// Decode parses a request from in into msg.
//
// A request line cut by EOF is still accepted, which is what lets a bare
// "GET /path" legacy request through. The same holds for the last header line.
// Decoding starts at the stream cursor when the stream exposes one.
// msg is only written once the whole request has parsed.
func (m *HTTPRequestMapper) Decode(in stream.Reader, msg *models.Message) error {
	offset := 0
	if c, ok := in.(cursorer); ok {
		offset = c.Cursor()
	}

	command, offset, err := m.readLine(in, offset)
	if err != nil {
		return err
	}

	parts := requestLinePattern.FindStringSubmatch(command)
	if parts == nil {
		return errs.WithLine(errs.InvalidCommand, command,
			"the HTTP command line is not valid: %q, expected format: METHOD URI [HTTP/VERSION]", command)
	}

	decoded := models.NewMessage()
	req := AsHTTP(decoded)
	req.SetMethod(parts[1])
	req.SetURI(parts[2])
	if parts[4] != "" {
		req.SetVersion(parts[4])
	} else {
		req.SetVersion(LegacyHTTPVersion)
	}

	if parts[3] != "" {
		for _, param := range parseQuery(parts[3]) {
			req.SetQueryHeader(param.key, param.value)
		}
	}

	terminated := false
	for !in.EOF() {
		var line string
		line, offset, err = m.readLine(in, offset)
		if err != nil {
			return err
		}

		if line == "" {
			decoded.SetBodyString(string(in.ReadAll(offset)))
			terminated = true
			break
		}

		header := headerLinePattern.FindStringSubmatch(line)
		if header == nil {
			return errs.WithLine(errs.InvalidHeader, line,
				"the HTTP header line is not valid: %q, expected format: HEADER-NAME: VALUE", line)
		}
		decoded.SetHeader(header[1], header[2])
	}

	// A legacy request has no header section to terminate.
	if !terminated && m.strict && parts[4] != "" {
		return errs.New(errs.InvalidHeader, "header section not terminated by an empty line")
	}

	for name, value := range decoded.Headers() {
		msg.SetHeader(name, value)
	}
	if body := decoded.Body(); !body.IsEmpty() {
		msg.SetBody(body)
	}
	return nil
}

// Encode writes msg as an HTTP request onto out.
func (m *HTTPRequestMapper) Encode(out stream.Writer, msg *models.Message) error {
	req := AsHTTP(msg)
	if !req.HasMethod() || !req.HasURI() {
		return errs.New(errs.InvalidArgument, "message has no %s or %s header", HeaderHTTPMethod, HeaderHTTPURI)
	}

	command := req.Method() + " " + req.URI()
	if query := encodeQuery(req.QueryHeaders()); query != "" {
		command += "?" + query
	}
	if version := req.Version(); version != "" && version != LegacyHTTPVersion {
		command += " HTTP/" + version
	}

	body, err := msg.BodyString()
	if err != nil {
		return err
	}

	if err := WriteLine(out, command); err != nil {
		return err
	}

	headers := msg.HeadersMatching(headerNamePattern)
	for _, name := range msg.HeaderNames() {
		value, ok := headers[name]
		if !ok {
			continue
		}
		if err := WriteLine(out, name+": "+value); err != nil {
			return err
		}
	}

	if body != "" {
		if err := WriteLine(out, ""); err != nil {
			return err
		}
		if _, err := out.WriteString(body); err != nil {
			return err
		}
	}
	return nil
}

// readLine reads the next line and falls back to the partial buffer when the
// stream ends before a terminator. Every other failure is fatal.
func (m *HTTPRequestMapper) readLine(in stream.Reader, offset int) (string, int, error) {
	line, next, err := ReadLine(in, false, offset, m.maxLineLength)
	if err != nil {
		partial, ok := errs.PartialBuffer(err)
		if !ok {
			return "", next, err
		}
		return string(partial), next, nil
	}
	return string(line), next, nil
}

type cursorer interface {
	Cursor() int
}

type queryParam struct {
	key   string
	value string
}

// parseQuery splits a raw query on '&'. Keys without '=' get an empty value,
// escapes are decoded when valid and kept verbatim otherwise.
func parseQuery(raw string) []queryParam {
	var params []queryParam
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescapeQuery(key)
		if key == "" {
			continue
		}
		params = append(params, queryParam{key: key, value: unescapeQuery(value)})
	}
	return params
}

// encodeQuery renders query parameters in key order. Empty values are
// written as a bare key.
func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		if v := params[k]; v != "" {
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	return sb.String()
}

func unescapeQuery(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}
