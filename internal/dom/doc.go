// Package dom defines the capability set the search subsystem needs from a
// host document tree.
//
// The host owns the tree. Nodes are opaque handles compared with ==; the
// search code never inspects concrete node types. Everything it needs is
// expressed through four small interfaces:
//
//   - Tree: classification (text leaf, element), navigation (parent,
//     first child, siblings), leaf text, leaf creation and range creation
//   - Range: DOM-style mutable range (SetStart, SetEnd, DeleteContents,
//     InsertNode)
//   - Selection: the current selection as a Boundary, plus applying a new
//     range or a single node as the selection
//   - Scroller: best-effort scroll-into-view
//
// Offsets inside a text leaf are byte offsets into its string. Offsets inside
// an element are child indices, as in the DOM.
//
// The helpers in this package (NextInOrder, Closest, Prev) are written only
// against Tree, so they work for any host.
package dom
