package services

import (
	"context"
	"fmt"
	"time"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/member"
)

type MemberService struct {
	members  *store.Collection[member.ClubMember]
	activity *ActivityLog
	notifier Notifier
}

func NewMemberService(stores *Stores, activity *ActivityLog, notifier Notifier) *MemberService {
	return &MemberService{members: stores.Members, activity: activity, notifier: notifier}
}

func (s *MemberService) List() []member.ClubMember {
	return s.members.List()
}

func (s *MemberService) Get(id string) (member.ClubMember, bool) {
	return s.members.Get(id)
}

func (s *MemberService) Create(ctx context.Context, actor string, m member.ClubMember) (member.ClubMember, error) {
	m.ID = store.NewID("member")
	m.Tags = orEmpty(m.Tags)
	if m.SubscriptionDate.IsZero() {
		m.SubscriptionDate = time.Now()
	}
	if m.PaymentHistory == nil {
		m.PaymentHistory = []member.PaymentLogEntry{}
	}

	if err := store.Validate(m); err != nil {
		return member.ClubMember{}, err
	}
	if err := s.members.Insert(ctx, m); err != nil {
		return member.ClubMember{}, fmt.Errorf("failed to create member: %w", err)
	}

	mutated("members", "create", 1)
	s.notifier.Notify(ctx, success("Member added successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Added member %s", m.Name))
	return m, nil
}

func (s *MemberService) Update(ctx context.Context, actor, id string, patch member.Patch) (member.ClubMember, bool, error) {
	current, ok := s.members.Get(id)
	if !ok {
		skipped("members", "update", id)
		return member.ClubMember{}, false, nil
	}
	patch.Apply(&current)
	if err := store.Validate(current); err != nil {
		return member.ClubMember{}, false, err
	}

	updated, ok, err := s.members.Update(ctx, id, patch.Apply)
	if err != nil {
		return member.ClubMember{}, false, fmt.Errorf("failed to update member: %w", err)
	}
	if !ok {
		skipped("members", "update", id)
		return member.ClubMember{}, false, nil
	}

	mutated("members", "update", 1)
	s.notifier.Notify(ctx, success("Member updated successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Updated member %s", updated.Name))
	return updated, true, nil
}

func (s *MemberService) Delete(ctx context.Context, actor, id string) (bool, error) {
	removed, err := s.members.DeleteMany(ctx, []string{id})
	if err != nil {
		return false, fmt.Errorf("failed to delete member: %w", err)
	}
	if len(removed) == 0 {
		skipped("members", "delete", id)
		return false, nil
	}

	mutated("members", "delete", 1)
	s.notifier.Notify(ctx, success("Member deleted successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Deleted member %s", removed[0].Name))
	return true, nil
}

func (s *MemberService) DeleteMany(ctx context.Context, actor string, ids []string) (int, error) {
	removed, err := s.members.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete members: %w", err)
	}
	if len(removed) == 0 {
		skipped("members", "delete_many", ids...)
		return 0, nil
	}

	mutated("members", "delete", len(removed))
	s.notifier.Notify(ctx, success(fmt.Sprintf("%d member(s) deleted.", len(removed))))
	s.activity.Add(ctx, actor, fmt.Sprintf("Deleted %d member(s)", len(removed)))
	return len(removed), nil
}

// AddPayment prepends a payment and renews the subscription: status goes
// back to Active and the subscription date becomes the payment date.
func (s *MemberService) AddPayment(ctx context.Context, actor, memberID string, req member.PaymentRequest) (member.ClubMember, bool, error) {
	if req.Date.IsZero() {
		req.Date = time.Now()
	}
	entry := member.PaymentLogEntry{
		ID:          store.NewID("payment"),
		Date:        req.Date,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if err := store.Validate(entry); err != nil {
		return member.ClubMember{}, false, err
	}

	updated, ok, err := s.members.Update(ctx, memberID, func(m *member.ClubMember) {
		m.PaymentHistory = append([]member.PaymentLogEntry{entry}, m.PaymentHistory...)
		m.SubscriptionStatus = member.StatusActive
		m.SubscriptionDate = entry.Date
	})
	if err != nil {
		return member.ClubMember{}, false, fmt.Errorf("failed to record payment: %w", err)
	}
	if !ok {
		skipped("members", "payment", memberID)
		return member.ClubMember{}, false, nil
	}

	mutated("members", "payment", 1)
	s.notifier.Notify(ctx, notificationPayment(updated.Name, entry.Amount))
	s.activity.Add(ctx, actor, fmt.Sprintf("Recorded payment of $%.2f for %s: \"%s\"", entry.Amount, updated.Name, entry.Description))
	return updated, true, nil
}
