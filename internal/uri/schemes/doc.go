// Package schemes implements the built-in URI schemes that plug resources
// into the configuration space:
//
//	s:text                 the literal text
//	env:NAME+default=x     an environment variable, overlaid on dotenv files
//	app:path/file.json     a file below the application base directory
//	dirmap:dir+key=value   the configuration documents of a directory as one map
//	local:key              a value from a local key/value store
//
// `app:` names are relative to the resource the reference was read from.
package schemes
