// Package factory builds pluggable modules, such as metrics sinks, from
// configuration entries of the form {type, conf}.
package factory
