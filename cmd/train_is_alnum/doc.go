// Package main provides a demo program for training an alphanumeric character
// classifier. Each byte is featurized with the hashing trick, with a salt search
// up front so the 256 byte vocabulary lands collision free.
package main
