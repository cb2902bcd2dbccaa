// Package pds implements the epoch-based privacy data service: the engine
// that ties budget.Storage, events.Storage, and a queries.Request together
// to register events, compute noiseable-but-budget-checked reports, and
// account for passive privacy loss, following Cookie Monster's
// ProcessDeviceEpochPrivacyBudgets algorithm (arXiv:2405.16719, Code
// Listing 1).
package pds

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/smartcontractkit/chainlink-data-streams/budget"
	"github.com/smartcontractkit/chainlink-data-streams/events"
	"github.com/smartcontractkit/chainlink-data-streams/mechanisms"
	"github.com/smartcontractkit/chainlink-data-streams/queries"
)

// float64EpsilonTolerance is IEEE-754 float64 machine epsilon, the default
// threshold below which a noise scale is treated as "non-private". This is
// purely a floating-point equality guard against b == 0, with no privacy
// meaning of its own.
const float64EpsilonTolerance = 2.220446049250313e-16

// Service is the epoch-based privacy data service. It owns a filter
// storage, an event storage, and a default per-epoch capacity, and is the
// single entry point callers use to register events and compute reports.
//
// Service assumes a single querier: filter identity is 1:1 with epoch id,
// and callers are expected to externally serialise access the way any
// non-reentrant, single-threaded engine does — there is no internal
// locking.
type Service[ID events.EpochID, E events.Event[ID], R queries.Report] struct {
	filterStorage    budget.Storage[ID]
	eventStorage     events.Storage[ID, E]
	defaultCapacity  budget.Budget
	epsilonTolerance float64
	lggr             logger.Logger
}

// New constructs a Service over the given filter and event storage
// backends. DefaultCapacity (ε=3.0) and a no-op logger are used unless
// overridden by opts; a nil logger passed through WithLogger is replaced
// with a no-op logger.
func New[ID events.EpochID, E events.Event[ID], R queries.Report](
	filterStorage budget.Storage[ID],
	eventStorage events.Storage[ID, E],
	opts ...Option[ID, E, R],
) *Service[ID, E, R] {
	s := &Service[ID, E, R]{
		filterStorage:    filterStorage,
		eventStorage:     eventStorage,
		defaultCapacity:  DefaultCapacity,
		epsilonTolerance: float64EpsilonTolerance,
		lggr:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lggr == nil {
		s.lggr = logger.Nop()
	}
	s.lggr = s.lggr.Named("pds.Service")
	return s
}

// RegisterEvent appends event to event storage. It has no budget
// interaction.
func (s *Service[ID, E, R]) RegisterEvent(event E) error {
	s.lggr.Debugw("register_event", "epoch_id", fmt.Sprintf("%v", event.EpochID()))
	if err := s.eventStorage.Add(event); err != nil {
		return errors.Wrap(err, "register_event")
	}
	return nil
}

// ComputeReport runs Cookie Monster's four-pass report algorithm:
//
//  1. collect relevant events per requested epoch;
//  2. compute a draft report, used only to derive single-epoch
//     sensitivity;
//  3. for each epoch, compute its individual privacy loss and try to
//     check-and-consume it from that epoch's filter, dropping the epoch's
//     events on OutOfBudget;
//  4. compute and return the final report over the epochs that survived.
//
// A storage error from check_and_consume causes ComputeReport to return
// the zero value of R (the null report) rather than surfacing the error,
// so a caller cannot learn which epoch's filter failed by probing for
// distinguishable error responses. Event-storage errors propagate.
func (s *Service[ID, E, R]) ComputeReport(request queries.Request[ID, E, R]) (R, error) {
	var zero R

	selector := request.RelevanceSelector()
	perEpoch := make(map[ID]events.EpochEvents[E])

	for _, epochID := range request.EpochIDs() {
		relevant, err := s.eventStorage.GetRelevant(epochID, selector)
		if err != nil {
			return zero, errors.Wrap(err, "compute_report: event storage")
		}
		if relevant != nil {
			perEpoch[epochID] = relevant
		}
	}

	numEpochs := len(perEpoch)
	draft := request.ComputeReport(perEpoch)

	for _, epochID := range request.EpochIDs() {
		epochEvents := perEpoch[epochID]

		loss := s.individualPrivacyLoss(request, epochEvents, draft, numEpochs)

		if err := s.ensureFilterExists(epochID); err != nil {
			// Creation failure is swallowed: proceed to check_and_consume,
			// which will fail-and-surface on its own if the filter
			// genuinely doesn't exist.
			s.lggr.Errorw("compute_report: ignoring filter creation failure", "error", err)
		}

		status, err := s.filterStorage.CheckAndConsume(epochID, loss)
		if err != nil {
			s.lggr.Errorw("compute_report: check_and_consume failed, returning null report", "error", err)
			return zero, nil
		}

		if status == budget.OutOfBudget {
			delete(perEpoch, epochID)
		}
	}

	return request.ComputeReport(perEpoch), nil
}

// AccountForPassivePrivacyLoss debits request.PrivacyBudget from each of
// request.EpochIDs in order, short-circuiting on the first OutOfBudget.
//
// Epochs already debited before a mid-iteration OutOfBudget are NOT rolled
// back, matching Cookie Monster's own accounting for passive loss (e.g.
// attribution reports that consume budget regardless of whether they
// ultimately clear every epoch's filter).
func (s *Service[ID, E, R]) AccountForPassivePrivacyLoss(request queries.PassiveLossRequest[ID]) (budget.FilterStatus, error) {
	for _, epochID := range request.EpochIDs {
		if err := s.ensureFilterExists(epochID); err != nil {
			s.lggr.Errorw("account_for_passive_privacy_loss: ignoring filter creation failure", "error", err)
		}

		status, err := s.filterStorage.CheckAndConsume(epochID, request.PrivacyBudget)
		if err != nil {
			return budget.OutOfBudget, errors.Wrap(err, "account_for_passive_privacy_loss")
		}

		if status == budget.OutOfBudget {
			return budget.OutOfBudget, nil
		}
	}
	return budget.Continue, nil
}

// RemainingBudget is a local-inspection-only passthrough to the filter
// storage: it must never be derived from, or leak into, a value returned
// to a report's caller.
func (s *Service[ID, E, R]) RemainingBudget(epochID ID) (budget.Budget, error) {
	remaining, err := s.filterStorage.GetRemaining(epochID)
	if err != nil {
		return budget.Budget{}, errors.Wrap(err, "remaining_budget")
	}
	return remaining, nil
}

func (s *Service[ID, E, R]) ensureFilterExists(epochID ID) error {
	initialized, err := s.filterStorage.IsInitialized(epochID)
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}
	return s.filterStorage.Create(epochID, s.defaultCapacity)
}

// individualPrivacyLoss computes the ε a request debits from one epoch's
// filter, following compute_individual_privacy_loss from Code Listing 1 in
// Cookie Monster (https://arxiv.org/pdf/2405.16719).
func (s *Service[ID, E, R]) individualPrivacyLoss(
	request queries.Request[ID, E, R],
	epochEvents events.EpochEvents[E],
	draft R,
	numEpochs int,
) budget.Budget {
	if len(epochEvents) == 0 {
		return budget.Finite(0)
	}

	var sensitivity float64
	if numEpochs == 1 {
		sensitivity = request.SingleEpochSensitivity(draft, mechanisms.L1)
	} else {
		sensitivity = request.GlobalSensitivity()
	}

	noiseScale := request.NoiseScale()
	if math.Abs(noiseScale.B) < s.epsilonTolerance {
		return budget.Infinite()
	}

	return budget.Finite(sensitivity / noiseScale.B)
}
