package distributor

import "errors"

var (
	// ErrCooldownNotElapsed is returned when a crank tries to open a
	// new day before 24h have passed since the last day open.
	ErrCooldownNotElapsed = errors.New("distributor: 24 hour cooldown not yet elapsed")

	// ErrInvalidPaginationCursor covers a bad page size as well as a
	// checkpoint cursor beyond the known investor count.
	ErrInvalidPaginationCursor = errors.New("distributor: invalid pagination cursor")

	// ErrInvalidShareBps rejects a policy whose investor share exceeds
	// 100%.
	ErrInvalidShareBps = errors.New("distributor: investor fee share above 10000 bps")

	// ErrPolicyExists rejects re-initialization of a vault.
	ErrPolicyExists = errors.New("distributor: policy already initialized for vault")

	// ErrPolicyNotFound is returned when cranking an uninitialized
	// vault.
	ErrPolicyNotFound = errors.New("distributor: policy not found for vault")

	// ErrInvalidTreasury is returned by transfer adapters when the
	// treasury or destination token account is missing or has the
	// wrong mint.
	ErrInvalidTreasury = errors.New("distributor: treasury account not found or invalid")
)
