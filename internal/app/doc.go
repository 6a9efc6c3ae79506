// Package app wires the search stack into a line-oriented console: a
// plain-text document loaded into memdom, a search session driven by a
// sched.Loop on its own goroutine, the event bus, the Lua script runner, a
// configuration watcher and a Prometheus registry.
//
// Commands are read one per line. Arguments are bare words or Go-quoted
// strings:
//
//	find "brown fox"       select the next match
//	prev fox               select the previous match
//	next | previous        navigate with the dialog query
//	open [replace]         open the dialog
//	close                  close the dialog (mode change)
//	query fox              set the dialog query
//	with wolf              set the dialog replacement
//	replace [q r]          replace the selected or first match
//	count fox              print the match count
//	all fox                print every match
//	key                    simulate editor input
//	edit                   mark the content as changed
//	show | selection       print the document or the selected text
//	script file.lua        run a Lua script
//	stats                  print session metrics
//	quit
//
// Every command waits until the loop is idle before the next one is read,
// so output is deterministic.
package app
