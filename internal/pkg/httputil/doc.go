// Package httputil holds the JSON envelope helpers shared by HTTP handlers.
package httputil
