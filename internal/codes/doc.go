// Package codes holds the single-operator session that tracks a numbered code list,
// the subset marked valid and the mode deciding how the next free-text message is read.
//
// The session never talks to Telegram. Every operation returns a Directive that the
// transport layer renders.
package codes
