// Package leftright implements the Left-Right concurrency-control
// technique (Correia & Ramalhete): two copies of a value, wait-free
// population-oblivious readers via Cell.Observe, and a single
// blocking writer per Cell via Cell.Modify that never blocks a reader.
//
// A Cell is the right tool when reads vastly outnumber writes and the
// protected value is small enough that applying a mutation twice (once
// to each copy) is cheap compared to making readers pay for
// synchronization. The event bus built on top of this package uses it
// to hold its subscriber table.
package leftright
