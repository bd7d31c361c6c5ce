package admin

// The administrative browser may only name identifiers listed here;
// anything else is rejected before a statement is built. Values are
// always bound as parameters, never interpolated.

// browsableColumns lists what each table exposes to the browser.
// Credential and recovery-code columns are deliberately absent.
var browsableColumns = map[string][]string{
	"users":   {"id", "username", "full_name", "birthday", "role", "created_at", "updated_at"},
	"lockers": {"id", "assigned_user_id", "stored_item", "updated_at"},
}

// updatableColumns lists what the browser may write. Locker occupancy
// is absent on purpose: occupant and item change only through the
// registry's atomic operations.
var updatableColumns = map[string][]string{
	"users": {"full_name", "role"},
}

func tableAllowed(table string) bool {
	_, ok := browsableColumns[table]
	return ok
}

func columnBrowsable(table, column string) bool {
	return contains(browsableColumns[table], column)
}

func columnUpdatable(table, column string) bool {
	return contains(updatableColumns[table], column)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
