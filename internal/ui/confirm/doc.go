// Package confirm asks the operator a yes/no question before destructive work.
//
// The line prompter accepts y, Y, n or N (surrounding whitespace ignored) and
// asks again on anything else. End of input before a valid answer is an
// error, never an implicit yes. On a terminal a huh confirm form can be used
// instead.
package confirm
