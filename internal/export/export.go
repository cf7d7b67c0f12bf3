// Package export applies named filter profiles to the channel set and writes
// one playlist file plus one plain-text listing per profile. Write failures
// are the only fatal error class in the pipeline and are returned to main.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/streamseek/iptv-seeker/internal/playlist"
)

// DefaultFilename is the playlist written when no profile configuration
// exists.
const DefaultFilename = "iptv.m3u"

// Profile is one named include/exclude filter producing an output file pair.
type Profile struct {
	Filename string   `json:"filename"`
	Include  []string `json:"include"`
	Exclude  []string `json:"exclude"`
}

// LoadProfiles reads the JSON profile list. A missing file returns (nil, nil)
// so the caller can fall back to the default profile; a malformed file is an
// error the caller may also degrade on.
func LoadProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("profiles %s: %w", path, err)
	}
	for i := range profiles {
		if profiles[i].Filename == "" {
			return nil, fmt.Errorf("profiles %s: entry %d has no filename", path, i)
		}
	}
	return profiles, nil
}

// DefaultProfile returns the single fallback profile. The legacy
// single-profile env lists feed its include/exclude.
func DefaultProfile(include, exclude []string) Profile {
	return Profile{Filename: DefaultFilename, Include: include, Exclude: exclude}
}

// IsMatch decides whether a channel name passes a profile's filter.
// Exclude wins: any exclude keyword found in name rejects. A non-empty
// include list is a whitelist: the name must contain at least one include
// keyword, so an include list with zero matches rejects.
func IsMatch(name string, include, exclude []string) bool {
	for _, kw := range exclude {
		if kw != "" && strings.Contains(name, kw) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, kw := range include {
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Export writes the file pair for every profile into outDir. The directory is
// created if absent; existing same-name files are overwritten in place.
func Export(channels []playlist.Channel, profiles []Profile, outDir string, log *logrus.Entry) error {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, p := range profiles {
		kept := lo.Filter(channels, func(ch playlist.Channel, _ int) bool {
			return IsMatch(ch.Name, p.Include, p.Exclude)
		})
		if len(kept) == 0 && len(channels) > 0 && len(p.Include) > 0 {
			log.WithField("profile", p.Filename).
				Warn("include list matched no channels; output will be empty")
		}
		playlistPath := filepath.Join(outDir, p.Filename)
		if err := writePlaylist(playlistPath, kept); err != nil {
			return err
		}
		if err := writeListing(filepath.Join(outDir, listingFilename(p.Filename)), kept); err != nil {
			return err
		}
		log.WithField("profile", p.Filename).Infof("exported %d/%d channels", len(kept), len(channels))
	}
	return nil
}

// listingFilename swaps the playlist extension for .txt (iptv.m3u → iptv.txt).
func listingFilename(playlistName string) string {
	ext := filepath.Ext(playlistName)
	if ext == "" {
		return playlistName + ".txt"
	}
	return strings.TrimSuffix(playlistName, ext) + ".txt"
}

func writePlaylist(path string, channels []playlist.Channel) error {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, ch := range channels {
		b.WriteString("#EXTINF:-1 group-title=\"" + ch.Group + "\"," + ch.Name + "\n")
		b.WriteString(ch.URL + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	return nil
}

func writeListing(path string, channels []playlist.Channel) error {
	var b strings.Builder
	for _, ch := range channels {
		b.WriteString(ch.Name + "," + ch.URL + "\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}
