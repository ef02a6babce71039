package engine

import (
	"github.com/AdguardTeam/urlfilter/rules"
)

// platformRequestTypes maps capitalized platform-internal resource-type names
// (the vocabulary browsers report in their network inspectors) onto the
// lowercase filter-list vocabulary. Tokens not present here are assumed to be
// filter-list tokens already and pass through unchanged.
var platformRequestTypes = map[string]string{
	"Document":       "document",
	"Subdocument":    "subdocument",
	"CSS stylesheet": "stylesheet",
	"Stylesheet":     "stylesheet",
	"Script":         "script",
	"Image":          "image",
	"Media":          "media",
	"TextTrack":      "media",
	"Font":           "font",
	"Object":         "object",
	"XMLHttpRequest": "xhr",
	"XHR":            "xhr",
	"Fetch":          "xhr",
	"WebSocket":      "websocket",
	"Ping":           "ping",
	"Beacon":         "ping",
	"EventSource":    "other",
	"Manifest":       "other",
	"Other":          "other",
}

// NormalizeRequestType converts a request-type token from either supported
// vocabulary into the lowercase filter-list vocabulary. Normalization is
// total: unknown tokens are returned unchanged and validated only by the
// matching engine itself.
func NormalizeRequestType(token string) string {
	if mapped, ok := platformRequestTypes[token]; ok {
		return mapped
	}
	return token
}

// filterListRequestTypes maps lowercase filter-list tokens onto the engine's
// request-type enum. Aliases used by the WebExtensions vocabulary
// (main_frame, sub_frame, xmlhttprequest) are accepted as well.
var filterListRequestTypes = map[string]rules.RequestType{
	"document":       rules.TypeDocument,
	"main_frame":     rules.TypeDocument,
	"subdocument":    rules.TypeSubdocument,
	"sub_frame":      rules.TypeSubdocument,
	"script":         rules.TypeScript,
	"stylesheet":     rules.TypeStylesheet,
	"object":         rules.TypeObject,
	"image":          rules.TypeImage,
	"xhr":            rules.TypeXmlhttprequest,
	"xmlhttprequest": rules.TypeXmlhttprequest,
	"media":          rules.TypeMedia,
	"font":           rules.TypeFont,
	"websocket":      rules.TypeWebsocket,
	"ping":           rules.TypePing,
	"other":          rules.TypeOther,
}

// engineRequestType resolves a normalized token to the engine enum.
// Unknown tokens degrade to TypeOther so the engine can still answer.
func engineRequestType(token string) rules.RequestType {
	if t, ok := filterListRequestTypes[token]; ok {
		return t
	}
	return rules.TypeOther
}
