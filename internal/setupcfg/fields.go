// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package setupcfg

// Section names of the generated document
const (
	SectionMetadata           = "metadata"
	SectionOptions            = "options"
	SectionPackagesFind       = "options.packages.find"
	SectionExtrasRequire      = "options.extras_require"
	SectionEntryPoints        = "options.entry_points"
	SectionPackageData        = "options.package_data"
	SectionExcludePackageData = "options.exclude_package_data"
	SectionDataFiles          = "options.data_files"
	SectionUnrecognized       = "unrecognized"
)

// sectionOrder fixes the order of sections in the output
var sectionOrder = []string{
	SectionMetadata,
	SectionOptions,
	SectionPackagesFind,
	SectionExtrasRequire,
	SectionEntryPoints,
	SectionPackageData,
	SectionExcludePackageData,
	SectionDataFiles,
	SectionUnrecognized,
}

// fieldKind describes how a setup() keyword is serialized
type fieldKind int

const (
	fieldString    fieldKind = iota // single value
	fieldBool                       // true/false
	fieldList                       // one item per line
	fieldDict                       // key = value per line, inside the option
	fieldSection                    // dict becomes its own section
	fieldPackages                   // list, or find: directive
	fieldDataFiles                  // list of (directory, files) pairs
)

func (k fieldKind) String() string {
	switch k {
	case fieldString:
		return "string"
	case fieldBool:
		return "boolean"
	case fieldList:
		return "list"
	case fieldDict, fieldSection:
		return "dict"
	case fieldPackages:
		return "list or find_packages()"
	case fieldDataFiles:
		return "list of (directory, files)"
	default:
		return "value"
	}
}

// field maps one setup() keyword to its place in setup.cfg
type field struct {
	Name    string
	Section string
	Kind    fieldKind
	// DefaultKey replaces an empty or None dict key
	DefaultKey string
	// Hint suggests a setup.cfg directive when the value is unresolved
	Hint string
}

// fields is the fixed field table. Its order is the output order.
var fields = []field{
	{Name: "name", Section: SectionMetadata, Kind: fieldString},
	{Name: "version", Section: SectionMetadata, Kind: fieldString, Hint: "attr: <package>.__version__ or file: VERSION"},
	{Name: "url", Section: SectionMetadata, Kind: fieldString},
	{Name: "download_url", Section: SectionMetadata, Kind: fieldString},
	{Name: "project_urls", Section: SectionMetadata, Kind: fieldDict},
	{Name: "author", Section: SectionMetadata, Kind: fieldString},
	{Name: "author_email", Section: SectionMetadata, Kind: fieldString},
	{Name: "maintainer", Section: SectionMetadata, Kind: fieldString},
	{Name: "maintainer_email", Section: SectionMetadata, Kind: fieldString},
	{Name: "classifiers", Section: SectionMetadata, Kind: fieldList},
	{Name: "license", Section: SectionMetadata, Kind: fieldString},
	{Name: "license_file", Section: SectionMetadata, Kind: fieldString},
	{Name: "license_files", Section: SectionMetadata, Kind: fieldList},
	{Name: "description", Section: SectionMetadata, Kind: fieldString},
	{Name: "long_description", Section: SectionMetadata, Kind: fieldString, Hint: "file: README.md"},
	{Name: "long_description_content_type", Section: SectionMetadata, Kind: fieldString},
	{Name: "keywords", Section: SectionMetadata, Kind: fieldList},
	{Name: "platforms", Section: SectionMetadata, Kind: fieldList},
	{Name: "provides", Section: SectionMetadata, Kind: fieldList},
	{Name: "requires", Section: SectionMetadata, Kind: fieldList},
	{Name: "obsoletes", Section: SectionMetadata, Kind: fieldList},

	{Name: "zip_safe", Section: SectionOptions, Kind: fieldBool},
	{Name: "setup_requires", Section: SectionOptions, Kind: fieldList},
	{Name: "install_requires", Section: SectionOptions, Kind: fieldList, Hint: "file: requirements.txt"},
	{Name: "python_requires", Section: SectionOptions, Kind: fieldString},
	{Name: "use_2to3", Section: SectionOptions, Kind: fieldBool},
	{Name: "use_2to3_fixers", Section: SectionOptions, Kind: fieldList},
	{Name: "use_2to3_exclude_fixers", Section: SectionOptions, Kind: fieldList},
	{Name: "convert_2to3_doctests", Section: SectionOptions, Kind: fieldList},
	{Name: "scripts", Section: SectionOptions, Kind: fieldList},
	{Name: "eager_resources", Section: SectionOptions, Kind: fieldList},
	{Name: "dependency_links", Section: SectionOptions, Kind: fieldList},
	{Name: "tests_require", Section: SectionOptions, Kind: fieldList},
	{Name: "include_package_data", Section: SectionOptions, Kind: fieldBool},
	{Name: "packages", Section: SectionOptions, Kind: fieldPackages, Hint: "find:"},
	{Name: "package_dir", Section: SectionOptions, Kind: fieldDict},
	{Name: "namespace_packages", Section: SectionOptions, Kind: fieldList},
	{Name: "py_modules", Section: SectionOptions, Kind: fieldList},

	{Name: "extras_require", Section: SectionExtrasRequire, Kind: fieldSection},
	{Name: "entry_points", Section: SectionEntryPoints, Kind: fieldSection},
	{Name: "package_data", Section: SectionPackageData, Kind: fieldSection, DefaultKey: "*"},
	{Name: "exclude_package_data", Section: SectionExcludePackageData, Kind: fieldSection, DefaultKey: "*"},
	{Name: "data_files", Section: SectionDataFiles, Kind: fieldDataFiles},
}

// lookupField returns the table entry for a setup() keyword
func lookupField(name string) (field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return field{}, false
}

// KnownField reports whether name is a keyword with a setup.cfg equivalent
func KnownField(name string) bool {
	_, ok := lookupField(name)
	return ok
}

// SectionFor returns the setup.cfg section a keyword is written to.
// Unknown keywords map to the catch-all section.
func SectionFor(name string) string {
	if f, ok := lookupField(name); ok {
		return f.Section
	}
	return SectionUnrecognized
}
