// Package classify turns raw page state into a tagged failure kind and
// drives the shared retry policy built on top of it.
package classify

import "strings"

// Kind is the classification of a page after navigation.
type Kind int

const (
	// None: the page looks healthy.
	None Kind = iota
	// NoData: the site explicitly reports no data for the query.
	// This is a terminal success with an empty payload, not a failure.
	NoData
	// SessionExpired: a login wall or a superseded-session error.
	SessionExpired
	// Transient: a generic error page worth retrying.
	Transient
	// Unknown: error-looking content that fits no known shape.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case NoData:
		return "no_data"
	case SessionExpired:
		return "session_expired"
	case Transient:
		return "transient"
	case Unknown:
		return "unknown"
	}
	return "invalid"
}

var noDataMarkers = []string{
	"couldn't find any data",
	"we couldn't find",
	"no data",
	"没有数据",
	"0 results",
}

var sessionMarkers = []string{
	"登录已失效",
	"已在其他地方登录",
	"请重新登录",
	"session expired",
	"unauthorized",
	"未授权",
}

// Markers must be contextual phrases: result pages are full of volume
// figures and user keywords, so bare digit runs ("502") or bare words
// ("error") would misfire on healthy data.
var transientMarkers = []string{
	"something went wrong",
	"went wrong",
	"出错了",
	"service unavailable",
	"bad gateway",
	"gateway timeout",
	"internal server error",
	"try again later",
}

var genericErrorMarkers = []string{
	"an error occurred",
	"error occurred",
	"系统错误",
	"加载失败",
	"请求失败",
}

// Classify inspects the visible page text and current URL and returns
// the failure kind. Precedence is fixed: explicit no-data markers win
// over session indicators, which win over generic error text, so a
// no-data page is never mistaken for a login failure.
func Classify(pageText, pageURL string) Kind {
	text := strings.ToLower(pageText)
	urlLower := strings.ToLower(pageURL)

	for _, m := range noDataMarkers {
		if strings.Contains(text, m) {
			return NoData
		}
	}

	if strings.Contains(urlLower, "login") || strings.Contains(urlLower, "signin") ||
		strings.Contains(urlLower, "accounts.google.com") {
		return SessionExpired
	}
	for _, m := range sessionMarkers {
		if strings.Contains(text, m) {
			return SessionExpired
		}
	}
	// A bare 400 page from the keyword tool means the session was
	// superseded by a login elsewhere.
	if strings.Contains(text, "400") && (strings.Contains(text, "失效") || strings.Contains(text, "bad request")) {
		return SessionExpired
	}
	// A login form rendered in place of the report.
	if strings.Contains(text, "密码") && (strings.Contains(text, "sign in") || strings.Contains(text, "log in") || strings.Contains(text, "登录")) {
		return SessionExpired
	}

	for _, m := range transientMarkers {
		if strings.Contains(text, m) {
			return Transient
		}
	}

	for _, m := range genericErrorMarkers {
		if strings.Contains(text, m) {
			return Unknown
		}
	}

	return None
}
