// Package dom provides the in-memory platform tree that weave reconciles
// against.
//
// A Node is an element, a text node, a comment (used by weave as a
// zero-content position anchor) or a document. Nodes form an ordinary
// parent/children tree with DOM-like mutation methods: InsertBefore,
// AppendChild, RemoveChild, SetAttribute and so on. Every structural or
// attribute change is reported as a Mutation to the observers registered on
// the tree's root, which lets transports stream changes to a real client and
// lets tests assert on exactly what was touched.
//
// # Identity
//
// Every node gets a process-unique ID at construction. Higher layers key
// their side tables by this ID instead of holding weak references.
//
// # Events
//
// AddEventListener registers a handler; Dispatch delivers an Event to the
// target and then bubbles it through the ancestors until StopPropagation.
package dom
