package exportpkg

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/disintegration/imaging"

	"github.com/galeproject/gale/internal/profile"
	"github.com/galeproject/gale/internal/thunderstore"
)

// modpacksCategory is always present on a published modpack, regardless of
// what the caller's PublishArgs.Categories lists.
const modpacksCategory = "modpacks"

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// PackageManifest mirrors Thunderstore's manifest.json schema for a
// publishable package.
type PackageManifest struct {
	Name               string   `json:"name"`
	VersionNumber      string   `json:"version_number"`
	WebsiteURL         string   `json:"website_url"`
	Description        string   `json:"description"`
	Dependencies       []string `json:"dependencies"`
	InstallerReference int      `json:"installer_reference,omitempty"`
}

// PublishArgs are the user-supplied fields for a modpack publish.
type PublishArgs struct {
	Name           string
	Author         string
	Description    string
	Website        string
	Version        string // semver
	Readme         string
	Changelog      string // optional
	IconPath       string // source icon, resized to 256x256 on publish
	Dependencies   []string
	Categories     []string
	Communities    []string // game slugs
	HasNSFWContent bool

	// IncludeFiles narrows which profile files are bundled, as
	// doublestar glob patterns relative to the profile root
	// ("BepInEx/config/**"). Empty means every file the r2x whitelist
	// would export.
	IncludeFiles []string
}

// Validate enforces the invariants the host is expected to check before
// ever reaching the wire.
func (a PublishArgs) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("exportpkg: modpack name must not be empty")
	}
	if len(a.Description) > 250 {
		return fmt.Errorf("exportpkg: modpack description must be at most 250 characters, got %d", len(a.Description))
	}
	if a.Readme == "" {
		return fmt.Errorf("exportpkg: modpack readme must not be empty")
	}
	if a.Author == "" {
		return fmt.Errorf("exportpkg: modpack author must not be empty")
	}
	if a.Website != "" {
		if u, err := url.ParseRequestURI(a.Website); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("exportpkg: modpack website %q is not a valid URL", a.Website)
		}
	}
	if !semverPattern.MatchString(a.Version) {
		return fmt.Errorf("exportpkg: modpack version %q is not valid semver", a.Version)
	}
	return nil
}

func (a PublishArgs) manifest() PackageManifest {
	return PackageManifest{
		Name:          a.Name,
		VersionNumber: a.Version,
		WebsiteURL:    a.Website,
		Description:   a.Description,
		Dependencies:  a.Dependencies,
	}
}

func withModpacksCategory(cats []string) []string {
	for _, c := range cats {
		if c == modpacksCategory {
			return cats
		}
	}
	return append(append([]string{}, cats...), modpacksCategory)
}

// BuildArchive assembles a modpack zip in memory: manifest.json, README.md,
// an optional CHANGELOG.md, icon.png resized to 256x256 with Lanczos3, and
// the profile's config files (reusing the same whitelist/exclusion rules as
// an r2x export).
func BuildArchive(args PublishArgs, p *profile.Profile) ([]byte, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}

	manifestJSON, err := json.MarshalIndent(args.manifest(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exportpkg: encode manifest.json: %w", err)
	}

	iconPNG, err := resizeIcon(args.IconPath)
	if err != nil {
		return nil, fmt.Errorf("exportpkg: resize icon: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeZipEntry(zw, "manifest.json", manifestJSON); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "README.md", []byte(args.Readme)); err != nil {
		return nil, err
	}
	if args.Changelog != "" {
		if err := writeZipEntry(zw, "CHANGELOG.md", []byte(args.Changelog)); err != nil {
			return nil, err
		}
	}
	if err := writeZipEntry(zw, "icon.png", iconPNG); err != nil {
		return nil, err
	}

	if p != nil {
		if err := addConfigFiles(zw, p.Path, args.IncludeFiles); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("exportpkg: finalize modpack archive: %w", err)
	}
	return buf.Bytes(), nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("exportpkg: create entry %s: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func addConfigFiles(zw *zip.Writer, profilePath string, include []string) error {
	return filepath.Walk(profilePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(profilePath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if isExcluded(rel) || !matchesInclude(rel, include) {
			return nil
		}

		w, err := zw.Create(rel)
		if err != nil {
			return fmt.Errorf("exportpkg: create entry %s: %w", rel, err)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("exportpkg: open %s: %w", path, err)
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}

// matchesInclude reports whether rel matches any of the include globs. An
// empty pattern list includes everything. Invalid patterns match nothing.
func matchesInclude(rel string, include []string) bool {
	if len(include) == 0 {
		return true
	}
	for _, pattern := range include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// resizeIcon reads srcPath and re-encodes it as a 256x256 PNG using
// Lanczos3 resampling.
func resizeIcon(srcPath string) ([]byte, error) {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", srcPath, err)
	}
	resized := imaging.Resize(img, 256, 256, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Publish runs the full three-phase upload and submission flow for a
// built modpack archive.
func Publish(ctx context.Context, client *thunderstore.Client, args PublishArgs, archiveBytes []byte) error {
	mediaUUID, parts, err := client.InitiateUpload(ctx, args.Name+".zip", int64(len(archiveBytes)))
	if err != nil {
		return fmt.Errorf("exportpkg: publish %s: %w", args.Name, err)
	}

	completed := make([]thunderstore.CompletedPart, 0, len(parts))
	for _, part := range parts {
		tag, err := client.UploadPart(ctx, part, archiveBytes)
		if err != nil {
			if abortErr := client.AbortUpload(ctx, mediaUUID); abortErr != nil {
				return fmt.Errorf("exportpkg: publish %s: upload part %d failed: %w (abort also failed: %v)", args.Name, part.PartNumber, err, abortErr)
			}
			return fmt.Errorf("exportpkg: publish %s: upload part %d: %w", args.Name, part.PartNumber, err)
		}
		completed = append(completed, thunderstore.CompletedPart{PartNumber: part.PartNumber, Tag: tag})
	}

	if err := client.FinishUpload(ctx, mediaUUID, completed); err != nil {
		if abortErr := client.AbortUpload(ctx, mediaUUID); abortErr != nil {
			return fmt.Errorf("exportpkg: publish %s: finish upload failed: %w (abort also failed: %v)", args.Name, err, abortErr)
		}
		return fmt.Errorf("exportpkg: publish %s: finish upload: %w", args.Name, err)
	}

	return client.Submit(ctx, thunderstore.SubmitRequest{
		UploadUUID:     mediaUUID,
		AuthorName:     args.Author,
		Categories:     withModpacksCategory(args.Categories),
		Communities:    args.Communities,
		HasNSFWContent: args.HasNSFWContent,
	})
}

// ExtractLatestChangelogSection pulls the topmost `## ` (or `# `) heading's
// body out of a CHANGELOG.md, the section a publish dialog pre-fills from
// when the author hasn't written one by hand. Returns "" if the changelog
// has no heading at all.
func ExtractLatestChangelogSection(changelog string) string {
	headingPattern := regexp.MustCompile(`(?m)^#{1,2}\s+.*$`)
	locs := headingPattern.FindAllStringIndex(changelog, 2)
	if len(locs) == 0 {
		return ""
	}

	start := locs[0][1]
	end := len(changelog)
	if len(locs) > 1 {
		end = locs[1][0]
	}

	section := changelog[start:end]
	return trimBlankLines(section)
}

func trimBlankLines(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == '\n' || s[start] == '\r' || s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == '\n' || s[end-1] == '\r' || s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
