package storage

import (
	"testing"

	"bmapp/config"
)

func TestStoreURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		key  string
		want string
	}{
		{
			name: "endpoint and bucket",
			cfg:  config.Config{MinioEndpoint: "127.0.0.1:9000", MinioBucket: "bmapp"},
			key:  "audio/1700000000000-rain.mp3",
			want: "http://127.0.0.1:9000/bmapp/audio/1700000000000-rain.mp3",
		},
		{
			name: "ssl",
			cfg:  config.Config{MinioEndpoint: "s3.example.com", MinioBucket: "clips", MinioUseSSL: true},
			key:  "licenses/1-proof.pdf",
			want: "https://s3.example.com/clips/licenses/1-proof.pdf",
		},
		{
			name: "public base override",
			cfg:  config.Config{MinioEndpoint: "minio:9000", MinioBucket: "bmapp", MinioPublicURL: "https://cdn.example.com/"},
			key:  "audio/1-a b.mp3",
			want: "https://cdn.example.com/audio/1-a%20b.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := s.URL(tt.key); got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KB",
		1536:    "1.5 KB",
		1 << 20: "1.0 MB",
	}
	for in, want := range tests {
		if got := FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := ContentTypeFor("audio/1-x.MP3"); got != "audio/mpeg" {
		t.Errorf("mp3 = %q", got)
	}
	if got := ContentTypeFor("licenses/1-x.pdf"); got != "application/pdf" {
		t.Errorf("pdf = %q", got)
	}
	if got := ContentTypeFor("noext"); got != "application/octet-stream" {
		t.Errorf("noext = %q", got)
	}
	if got := ContentKind("a/b.wav"); got != "audio" {
		t.Errorf("ContentKind(wav) = %q", got)
	}
}
