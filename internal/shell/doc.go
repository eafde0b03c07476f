// Package shell works out how the user's shell finds suiup's default
// binary directory: whether it is on PATH already, and if not, which
// startup file and line would put it there.
//
// Detection checks $SHELL and then the parent process. suiup never edits
// startup files; it only prints the line to add.
package shell
