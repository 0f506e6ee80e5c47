package cli

import "testing"

func TestClearTargets(t *testing.T) {
	tests := []struct {
		name                         string
		local, localSet, remote, all bool
		wantLocal, wantRemote        bool
	}{
		{"defaults", true, false, false, false, true, false},
		{"remote only", true, false, true, false, false, true},
		{"remote and local", true, true, true, false, true, true},
		{"all", true, false, false, true, true, true},
		{"local off", false, true, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			local, remote := clearTargets(tt.local, tt.localSet, tt.remote, tt.all)
			if local != tt.wantLocal || remote != tt.wantRemote {
				t.Errorf("clearTargets() = (%v, %v), want (%v, %v)", local, remote, tt.wantLocal, tt.wantRemote)
			}
		})
	}
}
