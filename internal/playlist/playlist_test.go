package playlist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streamseek/iptv-seeker/internal/config"
)

func TestParseBytes_metadataResetsAfterURL(t *testing.T) {
	m3u := "#EXTM3U\n#EXTINF:-1 group-title=\"News\",CNN\nhttp://a/1\nhttp://b/2\n"
	got, err := ParseBytes([]byte(m3u))
	if err != nil {
		t.Fatal(err)
	}
	want := []Channel{
		{Name: "CNN", Group: "News", URL: "http://a/1"},
		{Name: Unknown, Group: Unknown, URL: "http://b/2"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d channels, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("channel[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseBytes_defaults(t *testing.T) {
	tests := []struct {
		name string
		m3u  string
		want Channel
	}{
		{
			name: "no group-title attribute",
			m3u:  "#EXTINF:-1,CCTV1\nhttp://x/1\n",
			want: Channel{Name: "CCTV1", Group: Unknown, URL: "http://x/1"},
		},
		{
			name: "no comma means no name",
			m3u:  "#EXTINF:-1 group-title=\"Sports\"\nhttp://x/1\n",
			want: Channel{Name: Unknown, Group: "Sports", URL: "http://x/1"},
		},
		{
			name: "empty group attribute",
			m3u:  "#EXTINF:-1 group-title=\"\",CCTV1\nhttp://x/1\n",
			want: Channel{Name: "CCTV1", Group: Unknown, URL: "http://x/1"},
		},
		{
			name: "name after last comma",
			m3u:  "#EXTINF:-1 group-title=\"a,b\",CCTV5,体育\nhttp://x/1\n",
			want: Channel{Name: "体育", Group: "a,b", URL: "http://x/1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBytes([]byte(tt.m3u))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d channels: %v", len(got), got)
			}
			if got[0] != tt.want {
				t.Errorf("channel = %+v, want %+v", got[0], tt.want)
			}
		})
	}
}

func TestParseBytes_ignoresCommentsAndBlanks(t *testing.T) {
	m3u := "#EXTM3U\n\n#EXT-X-VERSION:3\n#EXTINF:-1,One\n\nhttp://x/1\n# trailing comment\n"
	got, err := ParseBytes([]byte(m3u))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "One" {
		t.Errorf("got %v", got)
	}
}

func TestParseBytes_empty(t *testing.T) {
	got, err := ParseBytes(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestIsPlaylistURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://h/list.m3u", true},
		{"http://h/live.M3U8", true},
		{"http://h/subs.txt", true},
		{"http://h:4022", false},
		{"http://h/stream.ts", false},
	}
	for _, tt := range tests {
		if got := IsPlaylistURL(tt.in); got != tt.want {
			t.Errorf("IsPlaylistURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFetch_integration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/x-mpegurl")
		w.Write([]byte("#EXTM3U\n#EXTINF:-1 group-title=\"Live\",From Server\nhttp://up/1\n"))
	}))
	defer srv.Close()

	got, err := Fetch(context.Background(), srv.URL+"/list.m3u", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "From Server" || got[0].Group != "Live" {
		t.Errorf("got %v", got)
	}
}

func TestFetch_badStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL+"/list.m3u", srv.Client()); err == nil {
		t.Error("expected error on HTTP 403")
	}
}

func TestParseAll_gatewayModes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTINF:-1 group-title=\"News\",CNN\nhttp://a/1\n"))
	}))
	defer srv.Close()

	sources := []string{"http://gw.example:4022", srv.URL + "/list.m3u"}

	synth := ParseAll(context.Background(), sources, srv.Client(), config.GatewaySynth, nil)
	if len(synth) != 2 {
		t.Fatalf("synth mode: got %d channels: %v", len(synth), synth)
	}
	if synth[0].Name != "Source 1" || synth[0].Group != "Live" || synth[0].URL != "http://gw.example:4022" {
		t.Errorf("synthetic entry = %+v", synth[0])
	}
	if synth[1].Name != "CNN" {
		t.Errorf("parsed entry = %+v", synth[1])
	}

	skip := ParseAll(context.Background(), sources, srv.Client(), config.GatewaySkip, nil)
	if len(skip) != 1 || skip[0].Name != "CNN" {
		t.Errorf("skip mode: got %v", skip)
	}
}

func TestParseAll_failingSourceIsolated(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTINF:-1,OK\nhttp://a/1\n"))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	sources := []string{bad.URL + "/dead.m3u", good.URL + "/live.m3u"}
	got := ParseAll(context.Background(), sources, good.Client(), config.GatewaySkip, nil)
	if len(got) != 1 || got[0].Name != "OK" {
		t.Errorf("got %v, want only the good source's channel", got)
	}
}
