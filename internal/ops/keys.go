package ops

import "strings"

// Document keys. The file backend maps these 1:1 onto the data directory.
const (
	sectionsPrefix  = "sections/"
	projectsPrefix  = "projects/"
	pagesPrefix     = "pages/"
	structureKey    = "structure.json"
	availabilityKey = "availability.json"
	tagsKey         = "tags.json"

	docExt = ".json"
)

func sectionKey(id string) string {
	return sectionsPrefix + id + docExt
}

func projectKey(id string) string {
	return projectsPrefix + id + docExt
}

func pageDir(category string) string {
	return pagesPrefix + category + "/"
}

func pageKey(category, slug string) string {
	return pageDir(category) + slug + docExt
}

// leafName returns the final segment of key without the .json extension,
// or "" when key is not a direct child document of prefix.
func leafName(prefix, key string) string {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok || strings.Contains(rest, "/") {
		return ""
	}
	name, ok := strings.CutSuffix(rest, docExt)
	if !ok {
		return ""
	}
	return name
}

// isContentKey reports whether key has one of the known document layouts.
func isContentKey(key string) bool {
	switch key {
	case structureKey, availabilityKey, tagsKey:
		return true
	}
	if leafName(sectionsPrefix, key) != "" || leafName(projectsPrefix, key) != "" {
		return true
	}
	rest, ok := strings.CutPrefix(key, pagesPrefix)
	if !ok {
		return false
	}
	category, file, ok := strings.Cut(rest, "/")
	return ok && category != "" && leafName("", file) != ""
}
