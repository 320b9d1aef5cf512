// Package pathmatch compiles route patterns and matches concrete paths
// against them.
//
// # Pattern Syntax
//
//	/users              static segment
//	/users/:id          named parameter (any single segment)
//	/users/:id:int      typed parameter (int, uint, uuid, string)
//	/files/*path        catch-all, must be the last segment
//
// Leading, trailing and repeated slashes carry no meaning, so "/users/"
// and "users" compile to the same pattern and "/users//42/" matches
// "/users/:id".
//
// # Matching
//
// Match returns the named parameters on success. Parameter values are
// percent-decoded; an encoded slash (%2F) is only accepted inside a
// catch-all. A value that does not satisfy its declared type is a
// non-match, never an error.
//
//	p := pathmatch.MustCompile("/bar/:x")
//	params, ok := p.Match("/bar/nog")
//	// ok == true, params["x"] == "nog"
package pathmatch
