// Package cache allocates durable destinations for picked assets inside the
// application's staging directory.
package cache
