// Package main provides a demo program for training a handwritten digit classifier on
// the MNIST dataset. This example wires the full training loop: validation after
// every epoch, checkpointing with resume, early stopping, hard sample boosting and
// optional run history recording to postgres or pure-kv.
package main
