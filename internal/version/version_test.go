package version

import "testing"

func TestString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"bare", Info{Name: "budgetlens", Version: "dev", BuildTime: "unknown"}, "budgetlens dev"},
		{"full", Info{
			Name: "budgetlens", Version: "1.2.0", BuildTime: "2024-06-01",
			GoVersion: "go1.24.1", VCSRevision: "3f2a9c1d77aa", VCSModified: true,
		}, "budgetlens 1.2.0 (go1.24.1, 3f2a9c1d+dirty, built 2024-06-01)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Name != Name || info.Version != Version {
		t.Errorf("Get() = %+v", info)
	}
}
