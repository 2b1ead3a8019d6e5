// Package browser abstracts the browsing-environment capabilities the
// session lifecycle depends on: opening a window, observing its close, and
// reading or replacing the current page's query string.
//
// The [Headless] implementation serves tests and server-side holders. Real
// browser embedders (wasm builds) provide their own [Context] over
// window/document without the lifecycle code knowing the difference.
package browser
