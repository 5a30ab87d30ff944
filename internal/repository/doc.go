// Package repository keeps track of installed packages. The installed
// repository is persisted as JSON under the vendor directory and is the
// package manager's record of what is physically present.
package repository
