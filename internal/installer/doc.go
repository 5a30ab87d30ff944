// Package installer implements the physical side of package installation.
// It defines the installer contract shared by all package types, the
// generic library installer that copies packages into the vendor directory,
// and the Manager that routes each operation to the first installer that
// supports the package's type.
package installer
