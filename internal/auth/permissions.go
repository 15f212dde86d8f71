package auth

// Permission constants define the available permissions in the system.
const (
	// PermAdminSettingsKeys allows adding, editing and deleting settings key definitions.
	PermAdminSettingsKeys = "admin.settings.keys"

	// PermSettingsContent allows viewing and editing the content of settings records.
	PermSettingsContent = "settings.content"
)

// Seeded role names.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Descriptions maps every permission to its description.
var Descriptions = map[string]string{ //nolint:gochecknoglobals
	PermAdminSettingsKeys: "Administer settings keys",
	PermSettingsContent:   "Edit settings content",
}

// RolePermissions lists the permissions of the seeded roles.
var RolePermissions = map[string][]string{ //nolint:gochecknoglobals
	RoleAdmin:  {PermAdminSettingsKeys, PermSettingsContent},
	RoleEditor: {PermSettingsContent},
}
