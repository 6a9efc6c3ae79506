// Package api provides the Lua API modules exposed to editor plugins.
//
// Each module implements Module and registers a global table named
// _rf_<name>. InjectAll then gathers those tables into one module that
// plugins load with:
//
//	local rf = require("richfind")
//	local n = rf.search.count("needle")
//
// # Search module
//
// rf.search drives the find/replace session of the host editor:
//
//	count(query)             -> number
//	next(query)              -> index|nil, total
//	prev(query)              -> index|nil, total
//	replace(query, text)     -> applied, error|nil
//
// Indexes are 1-based. Calls block the Lua state until the session answers,
// bounded by the module's call timeout.
package api
