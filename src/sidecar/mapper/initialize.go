package mapper

import (
	"net/url"
	"strings"

	"go.lsp.dev/protocol"
)

const _initOptionInstalledExtensions = "installedExtensions"

// InitializeParamsToInstalledExtensions extracts the extension identifiers the
// editor reported in its initialization options. Editors that do not report
// any yield an empty slice.
func InitializeParamsToInstalledExtensions(params *protocol.InitializeParams) []string {
	if params == nil {
		return nil
	}

	options, ok := params.InitializationOptions.(map[string]interface{})
	if !ok {
		return nil
	}

	raw, ok := options[_initOptionInstalledExtensions].([]interface{})
	if !ok {
		return nil
	}

	extensions := make([]string, 0, len(raw))
	for _, item := range raw {
		if id, ok := item.(string); ok && id != "" {
			extensions = append(extensions, id)
		}
	}
	return extensions
}

// InitializeParamsToSettingsSection returns the named settings section from
// the initialization options, unmodified. Returns nil when the section is not
// present so the server receives no settings rather than an empty object.
func InitializeParamsToSettingsSection(params *protocol.InitializeParams, section string) interface{} {
	if params == nil || section == "" {
		return nil
	}

	options, ok := params.InitializationOptions.(map[string]interface{})
	if !ok {
		return nil
	}
	return options[section]
}

// InitializeParamsToWorkspaceRoot determines the workspace root path from the
// initialize params, preferring workspace folders over the deprecated root fields.
func InitializeParamsToWorkspaceRoot(params *protocol.InitializeParams) string {
	if params == nil {
		return ""
	}

	for _, folder := range params.WorkspaceFolders {
		// code-workspace files may contain improperly formatted folders.
		parsed, err := url.Parse(folder.URI)
		if err != nil || parsed.Path == "" {
			continue
		}
		return parsed.Path
	}

	if params.RootURI != "" && strings.HasPrefix(string(params.RootURI), "file://") {
		return params.RootURI.Filename()
	}

	return params.RootPath
}
