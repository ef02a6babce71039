package engine

import (
	"testing"

	"github.com/AdguardTeam/urlfilter/rules"
)

func TestNormalizeRequestType_PlatformVocabulary(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"XMLHttpRequest", "xhr"},
		{"XHR", "xhr"},
		{"Fetch", "xhr"},
		{"CSS stylesheet", "stylesheet"},
		{"Stylesheet", "stylesheet"},
		{"Document", "document"},
		{"Subdocument", "subdocument"},
		{"Script", "script"},
		{"Image", "image"},
		{"Media", "media"},
		{"TextTrack", "media"},
		{"Font", "font"},
		{"Object", "object"},
		{"WebSocket", "websocket"},
		{"Ping", "ping"},
		{"Beacon", "ping"},
		{"EventSource", "other"},
		{"Manifest", "other"},
		{"Other", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := NormalizeRequestType(tt.token); got != tt.expected {
				t.Errorf("NormalizeRequestType(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRequestType_FilterListVocabularyIsIdentity(t *testing.T) {
	tokens := []string{
		"document", "subdocument", "script", "stylesheet", "object",
		"image", "xhr", "media", "font", "websocket", "ping", "other",
	}

	for _, token := range tokens {
		if got := NormalizeRequestType(token); got != token {
			t.Errorf("NormalizeRequestType(%q) = %q, want identity", token, got)
		}
	}
}

func TestNormalizeRequestType_UnknownTokenPassesThrough(t *testing.T) {
	for _, token := range []string{"csp_report", "frobnicate", ""} {
		if got := NormalizeRequestType(token); got != token {
			t.Errorf("NormalizeRequestType(%q) = %q, want pass-through", token, got)
		}
	}
}

func TestEngineRequestType(t *testing.T) {
	tests := []struct {
		token    string
		expected rules.RequestType
	}{
		{"document", rules.TypeDocument},
		{"main_frame", rules.TypeDocument},
		{"subdocument", rules.TypeSubdocument},
		{"sub_frame", rules.TypeSubdocument},
		{"script", rules.TypeScript},
		{"stylesheet", rules.TypeStylesheet},
		{"xhr", rules.TypeXmlhttprequest},
		{"xmlhttprequest", rules.TypeXmlhttprequest},
		{"websocket", rules.TypeWebsocket},
		{"ping", rules.TypePing},
		{"other", rules.TypeOther},
		// Unknown tokens degrade to other
		{"frobnicate", rules.TypeOther},
		{"", rules.TypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := engineRequestType(tt.token); got != tt.expected {
				t.Errorf("engineRequestType(%q) = %v, want %v", tt.token, got, tt.expected)
			}
		})
	}
}
