package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseActiveWindowID verifies window handle extraction from xprop replies
func TestParseActiveWindowID(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{
			name: "typical reply",
			out:  "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3200042\n",
			want: "0x3200042",
		},
		{
			name:    "no focused window",
			out:     "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x0\n",
			wantErr: true,
		},
		{
			name:    "property missing",
			out:     "_NET_ACTIVE_WINDOW:  not found.\n",
			wantErr: true,
		},
		{
			name:    "empty output",
			out:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseActiveWindowID(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseWMClassInstance verifies instance name extraction
func TestParseWMClassInstance(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{
			name: "typical reply",
			out:  "WM_CLASS(STRING) = \"chromium\", \"Chromium\"\n",
			want: "chromium",
		},
		{
			name: "instance with dots",
			out:  "WM_CLASS(STRING) = \"org.gnome.Nautilus\", \"Org.gnome.Nautilus\"\n",
			want: "org.gnome.Nautilus",
		},
		{
			name:    "property missing",
			out:     "WM_CLASS:  not found.\n",
			wantErr: true,
		},
		{
			name:    "no comma",
			out:     "WM_CLASS(STRING) = \"loner\"\n",
			wantErr: true,
		},
		{
			name:    "empty instance",
			out:     "WM_CLASS(STRING) = \"\", \"Thing\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWMClassInstance(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseDesktopPath verifies desktop entry extraction
func TestParseDesktopPath(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{
			name: "typical reply",
			out:  "_BAMF_DESKTOP_FILE(STRING) = \"/usr/share/applications/chromium.desktop\"\n",
			want: "/usr/share/applications/chromium.desktop",
		},
		{
			name:    "property missing",
			out:     "_BAMF_DESKTOP_FILE:  not found.\n",
			wantErr: true,
		},
		{
			name:    "empty value",
			out:     "_BAMF_DESKTOP_FILE(STRING) = \"\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDesktopPath(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
