package signing

import "strings"

// BuildSignedURL rebuilds url with the given signature as its final query
// parameter. Any existing signature parameter (stale from a previous
// signing round) is stripped; all other query parameters keep their
// original order.
func BuildSignedURL(url, signature string) string {
	base := url
	query := ""
	if i := strings.Index(url, "?"); i >= 0 {
		base = url[:i]
		query = url[i+1:]
	}

	var params []string
	for _, param := range strings.Split(query, "&") {
		if param == "" || strings.HasPrefix(param, SignatureParam) {
			continue
		}
		params = append(params, param)
	}
	params = append(params, SignatureParam+"="+signature)

	return base + "?" + strings.Join(params, "&")
}
