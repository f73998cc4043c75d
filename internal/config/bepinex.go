// Package config implements the round-trippable BepInEx .cfg and GDWeave
// .json config file parsers/serializers, and the per-profile ConfigCache
// that scans, caches, and disambiguates them.
package config

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// SettingType enumerates BepInEx's typed entry kinds.
type SettingType string

const (
	TypeBoolean SettingType = "Boolean"
	TypeString  SettingType = "String"
	TypeInt32   SettingType = "Int32"
	TypeSingle  SettingType = "Single"
	TypeDouble  SettingType = "Double"
	TypeFlags   SettingType = "Flags"
	TypeEnum    SettingType = "Enum"
)

// Entry is one setting within a BepInEx section.
type Entry struct {
	Name        string
	Value       string
	Description string
	Type        SettingType
	Default     string
	// AcceptableValues holds the enumerated option list for Flags/Enum, or
	// a comma-separated "v1, v2, v3" list for any type that declares one.
	// When present, Value and Default hold indices into this list rather
	// than the option labels themselves: a single index for Enum, a
	// comma-space-separated index set for Flags.
	AcceptableValues []string
	// IsFlags marks an enumerated entry whose value is a combinable set
	// of options rather than a single choice.
	IsFlags  bool
	RangeMin string
	RangeMax string
	// Orphaned entries have no "# Setting type:" metadata block and so
	// cannot be reset.
	Orphaned bool
}

// Section is a named group of entries.
type Section struct {
	Name    string
	Entries []Entry
}

// File is a fully parsed BepInEx .cfg file.
type File struct {
	PluginName    string
	PluginVersion string
	PluginGUID    string
	Sections      []Section
}

// SectionByName finds a section, or reports ok=false.
func (f *File) SectionByName(name string) (*Section, bool) {
	for i := range f.Sections {
		if f.Sections[i].Name == name {
			return &f.Sections[i], true
		}
	}
	return nil, false
}

// EntryByName finds an entry within a named section.
func (f *File) EntryByName(section, entry string) (*Entry, bool) {
	s, ok := f.SectionByName(section)
	if !ok {
		return nil, false
	}
	for i := range s.Entries {
		if s.Entries[i].Name == entry {
			return &s.Entries[i], true
		}
	}
	return nil, false
}

// ParseBepInEx parses a BepInEx .cfg document.
func ParseBepInEx(data []byte) (*File, error) {
	data = stripBOM(data)

	f := &File{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var curSection *Section
	var pendingDesc []string
	var pendingMeta *Entry

	flushMeta := func() {
		pendingDesc = nil
		pendingMeta = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimRight(line, "\r")
		trimmedSpace := strings.TrimSpace(trimmed)

		switch {
		case trimmedSpace == "":
			continue

		case strings.HasPrefix(trimmedSpace, "## Settings file was created by plugin "):
			rest := strings.TrimPrefix(trimmedSpace, "## Settings file was created by plugin ")
			parts := strings.Fields(rest)
			if len(parts) >= 1 {
				f.PluginVersion = parts[len(parts)-1]
				f.PluginName = strings.Join(parts[:len(parts)-1], " ")
			}
			continue

		case strings.HasPrefix(trimmedSpace, "## Plugin GUID: "):
			f.PluginGUID = strings.TrimPrefix(trimmedSpace, "## Plugin GUID: ")
			continue

		case strings.HasPrefix(trimmedSpace, "[") && strings.HasSuffix(trimmedSpace, "]"):
			flushMeta()
			f.Sections = append(f.Sections, Section{Name: trimmedSpace[1 : len(trimmedSpace)-1]})
			curSection = &f.Sections[len(f.Sections)-1]
			continue

		case strings.HasPrefix(trimmedSpace, "## "):
			pendingDesc = append(pendingDesc, strings.TrimPrefix(trimmedSpace, "## "))
			if pendingMeta == nil {
				pendingMeta = &Entry{}
			}
			continue

		case strings.HasPrefix(trimmedSpace, "# Setting type: "):
			if pendingMeta == nil {
				pendingMeta = &Entry{}
			}
			pendingMeta.Type = SettingType(strings.TrimPrefix(trimmedSpace, "# Setting type: "))
			continue

		case strings.HasPrefix(trimmedSpace, "# Default value: "):
			if pendingMeta == nil {
				pendingMeta = &Entry{}
			}
			pendingMeta.Default = strings.TrimPrefix(trimmedSpace, "# Default value: ")
			continue

		case strings.HasPrefix(trimmedSpace, "# Acceptable values: "):
			if pendingMeta == nil {
				pendingMeta = &Entry{}
			}
			rest := strings.TrimPrefix(trimmedSpace, "# Acceptable values: ")
			rest = strings.SplitN(rest, "\n", 2)[0]
			// strip the trailing "Multiple values can be set..." note if present
			if i := strings.Index(rest, "Multiple values"); i >= 0 {
				rest = rest[:i]
			}
			for _, v := range strings.Split(rest, ",") {
				v = strings.TrimSpace(v)
				if v != "" {
					pendingMeta.AcceptableValues = append(pendingMeta.AcceptableValues, v)
				}
			}
			continue

		case strings.HasPrefix(trimmedSpace, "# Multiple values can be set"):
			if pendingMeta == nil {
				pendingMeta = &Entry{}
			}
			pendingMeta.IsFlags = true
			continue

		case strings.HasPrefix(trimmedSpace, "# Acceptable value range: From "):
			rest := strings.TrimPrefix(trimmedSpace, "# Acceptable value range: From ")
			parts := strings.SplitN(rest, " to ", 2)
			if pendingMeta == nil {
				pendingMeta = &Entry{}
			}
			if len(parts) == 2 {
				pendingMeta.RangeMin = parts[0]
				pendingMeta.RangeMax = parts[1]
			}
			continue

		case strings.Contains(trimmedSpace, " = "):
			if curSection == nil {
				return nil, fmt.Errorf("config: entry %q outside any section", trimmedSpace)
			}
			idx := strings.Index(trimmedSpace, " = ")
			name := trimmedSpace[:idx]
			value := trimmedSpace[idx+3:]

			e := Entry{Name: name, Value: value}
			if pendingMeta != nil {
				e.Type = pendingMeta.Type
				e.Default = pendingMeta.Default
				e.AcceptableValues = pendingMeta.AcceptableValues
				e.IsFlags = pendingMeta.IsFlags || pendingMeta.Type == TypeFlags
				e.RangeMin = pendingMeta.RangeMin
				e.RangeMax = pendingMeta.RangeMax
				e.Description = strings.Join(pendingDesc, "\n")

				switch {
				case len(e.AcceptableValues) > 0 && e.IsFlags:
					e.Value = flagIndices(e.Value, e.AcceptableValues)
					e.Default = flagIndices(e.Default, e.AcceptableValues)
				case len(e.AcceptableValues) > 0:
					e.Value = enumIndex(e.Value, e.AcceptableValues)
					e.Default = enumIndex(e.Default, e.AcceptableValues)
				case e.Type == TypeString:
					e.Value = unescapeString(e.Value)
					e.Default = unescapeString(e.Default)
				}
			} else {
				e.Orphaned = true
			}

			curSection.Entries = append(curSection.Entries, e)
			flushMeta()
			continue

		default:
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: scan: %w", err)
	}

	return f, nil
}

func stripBOM(data []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if bytes.HasPrefix(data, bom) {
		return data[len(bom):]
	}
	return data
}

// Serialize writes f back out in BepInEx's exact format; round-tripping a
// parsed file through Serialize then ParseBepInEx must reproduce the same
// entries (metadata and read-time excepted).
func (f *File) Serialize() []byte {
	var b strings.Builder

	if f.PluginName != "" {
		fmt.Fprintf(&b, "## Settings file was created by plugin %s %s\n", f.PluginName, f.PluginVersion)
	}
	if f.PluginGUID != "" {
		fmt.Fprintf(&b, "## Plugin GUID: %s\n", f.PluginGUID)
	}
	if f.PluginName != "" || f.PluginGUID != "" {
		b.WriteByte('\n')
	}

	for si, s := range f.Sections {
		if si > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s]\n\n", s.Name)

		for _, e := range s.Entries {
			if !e.Orphaned {
				if e.Description != "" {
					for _, line := range strings.Split(e.Description, "\n") {
						fmt.Fprintf(&b, "## %s\n", line)
					}
				}
				fmt.Fprintf(&b, "# Setting type: %s\n", e.Type)
				fmt.Fprintf(&b, "# Default value: %s\n", e.writtenForm(e.Default))
				if len(e.AcceptableValues) > 0 {
					fmt.Fprintf(&b, "# Acceptable values: %s\n", strings.Join(e.AcceptableValues, ", "))
					if e.IsFlags {
						b.WriteString("# Multiple values can be set at the same time by separating them with , \n")
					}
				}
				if e.RangeMin != "" || e.RangeMax != "" {
					fmt.Fprintf(&b, "# Acceptable value range: From %s to %s\n", e.RangeMin, e.RangeMax)
				}
			}
			fmt.Fprintf(&b, "%s = %s\n\n", e.Name, e.writtenForm(e.Value))
		}
	}

	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}

// writtenForm converts an entry's in-memory value (index form for
// enumerated entries, unescaped text for strings) back to the label text
// the file format carries.
func (e Entry) writtenForm(value string) string {
	if e.Orphaned {
		return value
	}
	switch {
	case len(e.AcceptableValues) > 0 && e.IsFlags:
		return flagLabels(value, e.AcceptableValues)
	case len(e.AcceptableValues) > 0:
		return enumLabel(value, e.AcceptableValues)
	case e.Type == TypeString:
		return escapeString(value)
	default:
		return value
	}
}

// enumIndex maps an option label to its index in options, defaulting to 0
// for labels the option list doesn't declare.
func enumIndex(label string, options []string) string {
	for i, opt := range options {
		if opt == label {
			return strconv.Itoa(i)
		}
	}
	return "0"
}

func enumLabel(value string, options []string) string {
	if i, err := strconv.Atoi(value); err == nil && i >= 0 && i < len(options) {
		return options[i]
	}
	return value
}

// flagIndices maps a comma-space-separated label set to the matching
// option indices, dropping labels the option list doesn't declare.
func flagIndices(value string, options []string) string {
	var out []string
	for _, label := range ParseFlags(value) {
		for i, opt := range options {
			if opt == label {
				out = append(out, strconv.Itoa(i))
				break
			}
		}
	}
	return strings.Join(out, ", ")
}

func flagLabels(value string, options []string) string {
	var out []string
	for _, idxStr := range ParseFlags(value) {
		if i, err := strconv.Atoi(idxStr); err == nil && i >= 0 && i < len(options) {
			out = append(out, options[i])
		}
	}
	return strings.Join(out, ", ")
}

func unescapeString(s string) string { return strings.ReplaceAll(s, `\n`, "\n") }

func escapeString(s string) string { return strings.ReplaceAll(s, "\n", `\n`) }

// ParseFlags splits a comma-space-separated Flags value into its selected
// labels.
func ParseFlags(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ", ") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseNumeric parses a numeric setting's text, accepting ',' as a decimal
// separator by substituting it with '.' first.
func ParseNumeric(value string) (float64, error) {
	normalized := strings.Replace(value, ",", ".", 1)
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid numeric value %q: %w", value, err)
	}
	return f, nil
}

// Set assigns a new value to a non-orphaned entry; orphaned entries and
// missing entries return an error.
func (f *File) Set(section, entry, value string) error {
	e, ok := f.EntryByName(section, entry)
	if !ok {
		return fmt.Errorf("config: no entry %s.%s", section, entry)
	}
	if e.Orphaned {
		return fmt.Errorf("config: entry %s.%s is orphaned and has no default to validate against", section, entry)
	}
	e.Value = value
	return nil
}

// Reset restores a non-orphaned entry to its declared default.
func (f *File) Reset(section, entry string) error {
	e, ok := f.EntryByName(section, entry)
	if !ok {
		return fmt.Errorf("config: no entry %s.%s", section, entry)
	}
	if e.Orphaned {
		return fmt.Errorf("config: entry %s.%s is orphaned and cannot be reset", section, entry)
	}
	e.Value = e.Default
	return nil
}
