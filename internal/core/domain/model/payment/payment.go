package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parcelbot/internal/core/domain/model/kernel"
	"parcelbot/internal/core/domain/model/tier"
	"parcelbot/internal/pkg/errs"
)

var (
	// ErrPaymentIsNotConstructed is returned when a Payment instance was not created
	// through one of the constructors.
	ErrPaymentIsNotConstructed = errors.New("Payment must be created via NewTierUpgradePayment, NewTopUpPayment or RestorePayment")

	// ErrChargeAlreadyAttached is returned when a second charge reference is attached.
	ErrChargeAlreadyAttached = errors.New("payment already has a charge reference")
)

// Payment is a reserved paid action awaiting the gateway's outcome.
//
// Payment follows these invariants:
//   - Must have a valid identifier, order id and purpose
//   - Amount is positive
//   - A tier upgrade payment has a valid target tier, a top-up has none
//   - The charge reference is set at most once
//   - Status transitions follow Status
type Payment struct {
	id              kernel.UUID
	orderID         kernel.OrderID
	purpose         Purpose
	targetTier      tier.Tier
	amount          int64
	currency        string
	chargeReference string
	status          Status
	// storedStatus is the status this snapshot was read or added with
	storedStatus  Status
	failureReason string
	createdAt     time.Time
	isConstructed bool
}

// NewTierUpgradePayment reserves the payment of an upgrade to target.
//
// Parameters:
//   - id: payment identifier, also the gateway idempotency key
//   - orderID: the order being upgraded
//   - target: the tier bought
//   - amount: the price difference in minor units, positive
//   - currency: the catalog currency
//   - now: reservation time
func NewTierUpgradePayment(
	id kernel.UUID,
	orderID kernel.OrderID,
	target tier.Tier,
	amount int64,
	currency string,
	now time.Time,
) (*Payment, error) {
	p := &Payment{purpose: TierUpgrade, status: Pending, storedStatus: Pending, createdAt: now, isConstructed: true}

	if err := errors.Join(
		p.setIdentity(id, orderID),
		p.setTargetTier(target),
		p.setAmount(amount, currency),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// NewTopUpPayment reserves the payment of a reschedule top-up.
func NewTopUpPayment(
	id kernel.UUID,
	orderID kernel.OrderID,
	amount int64,
	currency string,
	now time.Time,
) (*Payment, error) {
	p := &Payment{purpose: RescheduleTopUp, status: Pending, storedStatus: Pending, createdAt: now, isConstructed: true}

	if err := errors.Join(
		p.setIdentity(id, orderID),
		p.setAmount(amount, currency),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestorePayment rebuilds a payment read from the store.
func RestorePayment(
	id kernel.UUID,
	orderID kernel.OrderID,
	purpose Purpose,
	targetTier tier.Tier,
	amount int64,
	currency string,
	chargeReference string,
	status Status,
	failureReason string,
	createdAt time.Time,
) (*Payment, error) {
	p := &Payment{
		purpose:         purpose,
		chargeReference: chargeReference,
		failureReason:   failureReason,
		createdAt:       createdAt,
		isConstructed:   true,
	}

	var tierErr error
	if purpose == TierUpgrade {
		tierErr = p.setTargetTier(targetTier)
	}

	if err := errors.Join(
		p.setIdentity(id, orderID),
		purpose.Validate(),
		tierErr,
		p.setAmount(amount, currency),
		status.Validate(),
	); err != nil {
		return nil, err
	}
	p.status = status
	p.storedStatus = status

	return p, nil
}

// Validate ensures the Payment instance was properly constructed.
func (p *Payment) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrPaymentIsNotConstructed
	}
	return nil
}

func (p *Payment) ID() kernel.UUID {
	return p.id
}

func (p *Payment) OrderID() kernel.OrderID {
	return p.orderID
}

func (p *Payment) Purpose() Purpose {
	return p.purpose
}

// TargetTier is the tier bought by an upgrade, Unknown for a top-up.
func (p *Payment) TargetTier() tier.Tier {
	return p.targetTier
}

func (p *Payment) Amount() int64 {
	return p.amount
}

func (p *Payment) Currency() string {
	return p.currency
}

// ChargeReference is the gateway's reference, empty until attached.
func (p *Payment) ChargeReference() string {
	return p.chargeReference
}

func (p *Payment) Status() Status {
	return p.status
}

// StoredStatus is the status the store held when this snapshot was taken.
// A write is only valid while the store still holds it.
func (p *Payment) StoredStatus() Status {
	return p.storedStatus
}

// FailureReason is the gateway's decline reason, empty unless Failed.
func (p *Payment) FailureReason() string {
	return p.failureReason
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

// Description is the human-readable line item sent to the gateway.
func (p *Payment) Description() string {
	if p.purpose == TierUpgrade {
		return fmt.Sprintf("Delivery upgrade to %s for order %s", p.targetTier, p.orderID)
	}
	return fmt.Sprintf("Reschedule top-up for order %s", p.orderID)
}

// AttachCharge records the gateway's charge reference.
//
// Returns an error if the reference is blank or a different reference is
// already attached. Attaching the same reference again is a no-op.
func (p *Payment) AttachCharge(reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return errs.NewValueIsRequiredError("charge reference")
	}
	if p.chargeReference != "" && p.chargeReference != reference {
		return ErrChargeAlreadyAttached
	}
	p.chargeReference = reference
	return nil
}

// Confirm marks the payment as paid. already is true when it had been
// confirmed before, in which case nothing changes and the caller must not
// apply the paid change a second time.
func (p *Payment) Confirm() (already bool, err error) {
	next, already, err := p.status.Confirm()
	if err != nil {
		return false, err
	}
	p.status = next
	return already, nil
}

// Fail marks the payment as declined with the gateway's reason.
func (p *Payment) Fail(reason string) (already bool, err error) {
	next, already, err := p.status.Fail()
	if err != nil {
		return false, err
	}
	if !already {
		p.failureReason = strings.TrimSpace(reason)
	}
	p.status = next
	return already, nil
}

// IsOverdue reports whether a pending payment was reserved more than ttl ago.
func (p *Payment) IsOverdue(now time.Time, ttl time.Duration) bool {
	return p.status == Pending && !now.Before(p.createdAt.Add(ttl))
}

// Expire marks an overdue pending payment as expired. It reports false and
// changes nothing when the payment is not overdue.
func (p *Payment) Expire(now time.Time, ttl time.Duration) (bool, error) {
	if !p.IsOverdue(now, ttl) {
		return false, nil
	}
	next, err := p.status.Expire()
	if err != nil {
		return false, err
	}
	p.status = next
	return true, nil
}

func (p *Payment) setIdentity(id kernel.UUID, orderID kernel.OrderID) error {
	if err := errors.Join(id.Validate(), orderID.Validate()); err != nil {
		return err
	}
	p.id = id
	p.orderID = orderID
	return nil
}

func (p *Payment) setTargetTier(t tier.Tier) error {
	if err := t.Validate(); err != nil {
		return err
	}
	p.targetTier = t
	return nil
}

func (p *Payment) setAmount(amount int64, currency string) error {
	var errList []error
	if amount <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"amount",
			fmt.Errorf("%d is not greater than 0", amount),
		))
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"currency",
			fmt.Errorf("%q is not a three letter code", currency),
		))
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}
	p.amount = amount
	p.currency = currency
	return nil
}
