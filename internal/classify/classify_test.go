package classify

import (
	"reflect"
	"testing"

	"github.com/PentesterFlow/apistats/internal/parser"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path        string
		wantVersion string
		wantGroup   string
		wantParams  []string
	}{
		{"/api/v2/products/{id}/reviews/{reviewId}", "v2", "products", []string{"id", "reviewId"}},
		{"/api/v1/users", "v1", "users", []string{}},
		{"/api/v2.1/reports/daily", "v2.1", "reports", []string{}},
		{"/v3/orders/{orderId}", "v3", "orders", []string{"orderId"}},
		{"/users/{id}", parser.NoVersion, "users", []string{"id"}},
		{"/api/v1", "v1", parser.RootGroup, []string{}},
		{"/api/v1/{tenant}/items", "v1", "items", []string{"tenant"}},
		{"/api/v1/{tenant}", "v1", parser.RootGroup, []string{"tenant"}},
		{"/api/v1/a/v2/b", "v1", "a", []string{}},
		{"/api/users", parser.NoVersion, "api", []string{}},
		{"/a/{x}/b/{x}", parser.NoVersion, "a", []string{"x", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := Classify(tt.path)
			if got.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", got.Version, tt.wantVersion)
			}
			if got.Group != tt.wantGroup {
				t.Errorf("Group = %q, want %q", got.Group, tt.wantGroup)
			}
			if !reflect.DeepEqual(got.Parameters, tt.wantParams) {
				t.Errorf("Parameters = %v, want %v", got.Parameters, tt.wantParams)
			}
		})
	}
}

func TestApply_Idempotent(t *testing.T) {
	ep := parser.Endpoint{Method: "GET", Path: "/api/v2/products/{id}/reviews/{reviewId}"}
	Apply(&ep)
	first := ep
	Apply(&ep)
	if !reflect.DeepEqual(first, ep) {
		t.Errorf("second Apply changed endpoint: %+v -> %+v", first, ep)
	}
	if ep.Version != "v2" || ep.Group != "products" {
		t.Errorf("Apply() = %+v", ep)
	}
}

func TestPatternKey(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v2/products/{id}/reviews/{reviewId}", "/v{n}/products/{id}/reviews/{id}"},
		{"/api/v1/users", "/v{n}/users"},
		{"/api/v2.1/users/{userId}", "/v{n}/users/{id}"},
		{"/users/{id}", "/users/{id}"},
		{"/jobs/{id}:cancel", "/jobs/{id}:cancel"},
		{"/api", "/api"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := PatternKey(tt.path); got != tt.want {
				t.Errorf("PatternKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPatternKey_SameShapeSameKey(t *testing.T) {
	a := PatternKey("/api/v1/users/{id}")
	b := PatternKey("/api/v2/users/{userId}")
	if a != b {
		t.Errorf("PatternKey mismatch: %q vs %q", a, b)
	}
}

func TestCollapseParams(t *testing.T) {
	if got := CollapseParams("/api/v1/users/{userId}/posts/{postId}"); got != "/api/v1/users/{id}/posts/{id}" {
		t.Errorf("CollapseParams() = %q", got)
	}
}

func TestDistinctParameters(t *testing.T) {
	got := DistinctParameters([]string{"a", "b", "a", "c", "b"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("DistinctParameters() = %v", got)
	}
}

func TestResource(t *testing.T) {
	if r, ok := Resource("/api/v1/orders/{id}"); !ok || r != "orders" {
		t.Errorf("Resource() = %q, %v", r, ok)
	}
	if _, ok := Resource("/api/v1/{id}"); ok {
		t.Error("Resource() should report no resource for root paths")
	}
}
