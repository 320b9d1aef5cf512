// Package errors provides coded, actionable errors for the isorouter CLI
// and its configuration layer.
//
// Routing itself never fails with these errors; handler failures are
// values delivered to the finish callback. This package covers what
// happens around the router: loading route tables, compiling their
// patterns and serving them.
//
// # Error Codes
//
// Each error has a unique code (e.g., "R001") that maps to a category, a
// short message and a detailed explanation:
//
//	err := errors.New("R001").
//	    WithDetail(`pattern "/users/:" has an empty parameter name`).
//	    WithSuggestion("Name every parameter, e.g. /users/:id")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R001: Invalid route pattern
//	//
//	//   pattern "/users/:" has an empty parameter name
//	//
//	//   Hint: Name every parameter, e.g. /users/:id
package errors
