// Package main provides a demo program for running inference with a trained MNIST digit
// classifier. It loads a checkpointed model, evaluates the held out test set and
// prints per digit precision and recall from the confusion matrix.
package main
