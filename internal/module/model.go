package module

// Module is an optional, separately licensed part of an application.
type Module struct {
	ModuleID      int64  `db:"module_id" json:"moduleId"`
	ApplicationID int64  `db:"application_id" json:"applicationId"`
	ModuleName    string `db:"module_name" json:"moduleName"`
}

// Names returns module names in the order given.
func Names(mods []Module) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.ModuleName)
	}
	return out
}
