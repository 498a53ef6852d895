// Package main provides a demo program for training a tiny network on the
// xor truth table. This is the smallest end to end example of the trainer
// loop and is a good place to start reading.
package main
