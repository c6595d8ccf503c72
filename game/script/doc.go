// Package script lets unit abilities be written as tengo scripts.
//
// A Loader reads every *.tengo file from an abilities directory and registers
// it in an engine.AbilityRegistry under the file's base name; Watch keeps the
// registry current while the files are edited. A script never touches the
// game directly: it reads its inputs and returns a list of actions that the
// Ability then applies.
package script
