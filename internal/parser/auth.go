package parser

import "strings"

// authMarkers are header names whose presence on a line makes it an
// authentication example worth inspecting.
var authMarkers = []string{"Authorization:", "X-API-Key:", "X-Client-Certificate:"}

var authSchemes = []struct {
	needle string
	label  string
}{
	{"Bearer", AuthBearer},
	{"X-API-Key", AuthAPIKey},
	{"Basic", AuthBasic},
	{"X-Client-Certificate", AuthClientCert},
}

// DetectAuth returns the scheme labels mentioned on line, in a fixed order.
// Lines without a header marker yield nothing.
func DetectAuth(line string) []string {
	marked := false
	for _, marker := range authMarkers {
		if strings.Contains(line, marker) {
			marked = true
			break
		}
	}
	if !marked {
		return nil
	}

	var labels []string
	for _, scheme := range authSchemes {
		if strings.Contains(line, scheme.needle) {
			labels = append(labels, scheme.label)
		}
	}
	return labels
}

// AuthSet is an insertion-ordered set of scheme labels.
type AuthSet struct {
	labels []string
	seen   map[string]struct{}
}

// Add records labels not seen before.
func (a *AuthSet) Add(labels ...string) {
	if a.seen == nil {
		a.seen = make(map[string]struct{})
	}
	for _, label := range labels {
		if _, ok := a.seen[label]; ok {
			continue
		}
		a.seen[label] = struct{}{}
		a.labels = append(a.labels, label)
	}
}

// Labels returns the labels in first-seen order. The result is never nil.
func (a *AuthSet) Labels() []string {
	out := make([]string, len(a.labels))
	copy(out, a.labels)
	return out
}

// Len returns the number of distinct labels.
func (a *AuthSet) Len() int {
	return len(a.labels)
}
