package discover

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/streamseek/iptv-seeker/internal/httpclient"
)

const (
	fofaSearchURL  = "https://fofa.info/api/v1/search/all"
	fofaTimeout    = 10 * time.Second
	fofaResultSize = 50
)

// FofaBackend queries the FOFA search API for udpxy gateways in a region.
// Requires an account email and API key; construct via NewFofaBackend, which
// returns nil when credentials are absent so the backend degrades to
// "not configured" instead of failing every keyword.
type FofaBackend struct {
	Email  string
	Key    string
	APIURL string // defaults to the public FOFA API
	Client *http.Client
}

// NewFofaBackend returns a backend, or nil when email or key is empty.
func NewFofaBackend(email, key string) *FofaBackend {
	if email == "" || key == "" {
		return nil
	}
	return &FofaBackend{Email: email, Key: key}
}

func (f *FofaBackend) Name() string { return "fofa" }

type fofaResponse struct {
	Error   bool            `json:"error"`
	ErrMsg  string          `json:"errmsg"`
	Results [][]interface{} `json:"results"`
}

// Search issues one FOFA query per keyword. The query targets udpxy status
// pages in the keyword's region; results come back as host:port pairs.
func (f *FofaBackend) Search(ctx context.Context, keyword string) ([]string, error) {
	query := `"udpxy" && region="` + keyword + `"`
	q := url.Values{}
	q.Set("email", f.Email)
	q.Set("key", f.Key)
	q.Set("qbase64", base64.StdEncoding.EncodeToString([]byte(query)))
	q.Set("fields", "protocol,host")
	q.Set("size", strconv.Itoa(fofaResultSize))

	client := f.Client
	if client == nil {
		client = httpclient.WithTimeout(fofaTimeout)
	}
	apiURL := f.APIURL
	if apiURL == "" {
		apiURL = fofaSearchURL
	}
	ctx, cancel := context.WithTimeout(ctx, fofaTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fofa: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var fr fofaResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("fofa response: %w", err)
	}
	if fr.Error {
		return nil, fmt.Errorf("fofa: %s", fr.ErrMsg)
	}
	out := make([]string, 0, len(fr.Results))
	for _, row := range fr.Results {
		if len(row) < 2 {
			continue
		}
		proto, _ := row[0].(string)
		host, _ := row[1].(string)
		if host == "" {
			continue
		}
		if !strings.Contains(host, "://") {
			if proto == "" {
				proto = "http"
			}
			host = proto + "://" + host
		}
		out = append(out, host)
	}
	return out, nil
}
