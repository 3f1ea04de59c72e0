/*
Package ports declares the interfaces through which the engine talks to the
outside world, keeping the core free of storage concerns.

Adapters under pkg/adapters implement these interfaces: render caches over
memory, Redis or Badger, and preset stores over memory or a directory of
YAML files. Contract test suites for both ports live in this package so
every adapter proves the same behavior.
*/
package ports
