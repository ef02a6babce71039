// Package hostlist matches request hostnames against plain domain blocklists
// (one domain per line, hosts-file syntax accepted). These lists carry no
// request-type or exception semantics, so they are evaluated as a fast path
// before the filter-rule engine.
package hostlist

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ahocorasick "github.com/BobuSumisu/aho-corasick"

	"github.com/codefionn/blockcheck/blockcheck-cli/logger"
)

var rgComment = regexp.MustCompile(`\A(.*?)[ \t\v]*(?:[#;].*)?\z`)
var rgSplitDomains = regexp.MustCompile(`[ \t\v]+`)

// Matcher holds the combined domain set of all loaded host lists.
// Uses an Aho-Corasick trie for efficient matching; immutable after New.
type Matcher struct {
	trie    *ahocorasick.Trie
	domains []string
	sources []string // file that contributed domains[i], for attribution
}

// New loads the given host-list files and builds the matching trie.
// Returns nil (no matcher) when paths is empty.
func New(paths []string) (*Matcher, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	m := &Matcher{}
	for _, path := range paths {
		domains, err := loadHostFile(path)
		if err != nil {
			return nil, err
		}
		for _, domain := range domains {
			m.domains = append(m.domains, domain)
			m.sources = append(m.sources, path)
		}
		logger.Debug("Loaded %d domains from host list %q", len(domains), path)
	}

	if len(m.domains) > 0 {
		m.trie = ahocorasick.NewTrieBuilder().AddStrings(m.domains).Build()
	}
	return m, nil
}

// Match reports whether the hostname of requestURL is covered by a loaded
// domain, either exactly or as a subdomain on a dot boundary. On a match it
// returns the matching domain and the host list it came from.
func (m *Matcher) Match(requestURL string) (domain, source string, ok bool) {
	if m == nil || m.trie == nil {
		return "", "", false
	}

	u, err := url.Parse(requestURL)
	if err != nil {
		return "", "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", "", false
	}

	matches := m.trie.MatchString(host)
	for _, match := range matches {
		domain := m.domains[match.Pattern()]

		hasSuffix := strings.HasSuffix(host, domain)
		if hasSuffix && len(host) == len(domain) {
			return domain, m.sources[match.Pattern()], true
		}

		// Subdomain match only on a dot boundary (host ends with ".domain")
		if hasSuffix && len(host) > len(domain) && host[len(host)-len(domain)-1] == '.' {
			return domain, m.sources[match.Pattern()], true
		}
	}
	return "", "", false
}

// Size returns the number of loaded domains.
func (m *Matcher) Size() int {
	if m == nil {
		return 0
	}
	return len(m.domains)
}

// loadHostFile reads one domain-per-line file, tolerating hosts-file syntax:
// comments (# or ;), leading 0.0.0.0/127.0.0.1 addresses and *.wildcards.
func loadHostFile(filePath string) ([]string, error) {
	cleanPath := filepath.Clean(filePath)
	if !filepath.IsAbs(cleanPath) {
		absPath, err := filepath.Abs(cleanPath)
		if err != nil {
			return nil, fmt.Errorf("invalid host list path: %w", err)
		}
		cleanPath = absPath
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open host list: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Error("Error closing host list file: %v", closeErr)
		}
	}()

	var domains []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		line = rgComment.FindStringSubmatch(line)[1]

		for _, domain := range rgSplitDomains.Split(line, -1) {
			if domain == "" || domain == "0.0.0.0" || domain == "127.0.0.1" || domain == "::1" {
				continue
			}

			// Wildcards are not supported, but subdomains match anyway
			if strings.HasPrefix(domain, "*.") {
				domain = domain[2:]
			}

			domains = append(domains, strings.ToLower(domain))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read host list: %w", err)
	}

	return domains, nil
}
