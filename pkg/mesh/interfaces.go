package mesh

// Collaborator contracts consumed by the coordination core. Implementations
// live in internal packages (or in tests as fakes); the core never spawns
// processes or touches the filesystem itself.

// KeyGenerator supplies WireGuard key material as opaque strings.
type KeyGenerator interface {
	// GeneratePrivateKey returns a fresh base64-encoded private key.
	GeneratePrivateKey() (string, error)

	// PublicKey derives the public key for a private key.
	PublicKey(privateKey string) (string, error)
}

// InterfaceSource produces the raw local interface listing text that the
// interface parser consumes. The real implementation captures `ip addr show`
// output; tests supply literal text.
type InterfaceSource interface {
	Listing() (string, error)
}

// Store is the durable read/write home of the serialized network.
type Store interface {
	// Load reads the persisted network. It returns an error when no readable
	// network exists; callers decide whether that means "start fresh".
	Load() (*Network, error)

	// Save writes the network, replacing any previous state.
	Save(*Network) error
}
