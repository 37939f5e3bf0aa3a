package instrumentation

import "testing"

func TestNormalizeAPIPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tasks/6X7rM8997g3RQmvh/close", "/tasks/{id}/close"},
		{"/tasks/filter", "/tasks/filter"},
		{"/tasks/completed/by_completion_date", "/tasks/completed/by_completion_date"},
		{"/projects/2203306141/collaborators", "/projects/{id}/collaborators"},
		{"/user", "/user"},
		{"/wp-admin/login.php", "/{id}/{id}"},
		{"", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizeAPIPath(tt.path); got != tt.want {
				t.Errorf("NormalizeAPIPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
