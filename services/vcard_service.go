package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"cardifyAPI/internal/store"
	"cardifyAPI/internal/types/vcard"
)

func init() {
	store.RegisterStructValidation(validateVCardContacts, vcard.VCard{})
}

// validateVCardContacts checks list entries the tags cannot reach.
func validateVCardContacts(sl validator.StructLevel) {
	v := sl.Current().Interface().(vcard.VCard)

	check := func(field string, list []vcard.ContactDetail, tag, reason string) {
		for i, d := range list {
			if !store.ValidateVar(d.Value, tag) {
				sl.ReportError(d.Value, fmt.Sprintf("%s[%d].value", field, i), "value", reason, "")
			}
		}
	}
	check("phones", v.Phones, "required", "notblank")
	check("emails", v.Emails, "required,email", "email")
	check("websites", v.Websites, "required,url", "url")
	check("addresses", v.Addresses, "required", "notblank")
}

type VCardService struct {
	vcards   *store.Collection[vcard.VCard]
	activity *ActivityLog
	notifier Notifier
}

func NewVCardService(stores *Stores, activity *ActivityLog, notifier Notifier) *VCardService {
	return &VCardService{vcards: stores.VCards, activity: activity, notifier: notifier}
}

func (s *VCardService) List() []vcard.VCard {
	return s.vcards.List()
}

func (s *VCardService) Get(id string) (vcard.VCard, bool) {
	return s.vcards.Get(id)
}

func (s *VCardService) Create(ctx context.Context, actor string, v vcard.VCard) (vcard.VCard, error) {
	v.ID = store.NewID("vcard")
	if v.Company != "" {
		v.Tags = store.MergeTags([]string{v.Company}, v.Tags)
	}
	v.Tags = orEmpty(v.Tags)
	if v.Subscription == "" {
		v.Subscription = vcard.SubscriptionBasic
	}
	if v.CreatedBy == "" {
		v.CreatedBy = actor
	}
	fillContactIDs(&v)

	if err := store.Validate(v); err != nil {
		return vcard.VCard{}, err
	}
	if err := s.vcards.Insert(ctx, v); err != nil {
		return vcard.VCard{}, fmt.Errorf("failed to create vCard: %w", err)
	}

	mutated("vcards", "create", 1)
	s.notifier.Notify(ctx, success("vCard created successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Created vCard for %s", v.FullName()))
	return v, nil
}

func (s *VCardService) Update(ctx context.Context, actor, id string, patch vcard.Patch) (vcard.VCard, bool, error) {
	current, ok := s.vcards.Get(id)
	if !ok {
		skipped("vcards", "update", id)
		return vcard.VCard{}, false, nil
	}
	patch.Apply(&current)
	fillContactIDs(&current)
	if err := store.Validate(current); err != nil {
		return vcard.VCard{}, false, err
	}

	updated, ok, err := s.vcards.Update(ctx, id, func(v *vcard.VCard) {
		patch.Apply(v)
		fillContactIDs(v)
	})
	if err != nil {
		return vcard.VCard{}, false, fmt.Errorf("failed to update vCard: %w", err)
	}
	if !ok {
		skipped("vcards", "update", id)
		return vcard.VCard{}, false, nil
	}

	mutated("vcards", "update", 1)
	s.notifier.Notify(ctx, success("vCard updated successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Updated vCard for %s", updated.FullName()))
	return updated, true, nil
}

func (s *VCardService) Delete(ctx context.Context, actor, id string) (bool, error) {
	removed, err := s.vcards.DeleteMany(ctx, []string{id})
	if err != nil {
		return false, fmt.Errorf("failed to delete vCard: %w", err)
	}
	if len(removed) == 0 {
		skipped("vcards", "delete", id)
		return false, nil
	}

	mutated("vcards", "delete", 1)
	s.notifier.Notify(ctx, success("vCard deleted successfully."))
	s.activity.Add(ctx, actor, fmt.Sprintf("Deleted vCard for %s", removed[0].FullName()))
	return true, nil
}

func (s *VCardService) DeleteMany(ctx context.Context, actor string, ids []string) (int, error) {
	removed, err := s.vcards.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete vCards: %w", err)
	}
	if len(removed) == 0 {
		skipped("vcards", "delete_many", ids...)
		return 0, nil
	}

	mutated("vcards", "delete", len(removed))
	s.notifier.Notify(ctx, success(fmt.Sprintf("%d vCard(s) deleted.", len(removed))))
	s.activity.Add(ctx, actor, fmt.Sprintf("Deleted %d vCard(s)", len(removed)))
	return len(removed), nil
}

func (s *VCardService) AddTagsToMany(ctx context.Context, actor string, ids, tags []string) (int, error) {
	updated, err := s.vcards.UpdateMany(ctx, ids, func(v *vcard.VCard) {
		v.Tags = store.MergeTags(v.Tags, tags)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to tag vCards: %w", err)
	}
	if len(updated) == 0 {
		skipped("vcards", "add_tags", ids...)
		return 0, nil
	}

	mutated("vcards", "add_tags", len(updated))
	s.notifier.Notify(ctx, success(fmt.Sprintf("Tags added to %d vCard(s).", len(updated))))
	s.activity.Add(ctx, actor, fmt.Sprintf("Added tags to %d vCard(s)", len(updated)))
	return len(updated), nil
}

// fillContactIDs gives every list entry an id and turns nil lists into
// empty ones.
func fillContactIDs(v *vcard.VCard) {
	lists := []*[]vcard.ContactDetail{&v.Phones, &v.Emails, &v.Websites, &v.Addresses}
	for _, list := range lists {
		if *list == nil {
			*list = []vcard.ContactDetail{}
		}
		for i := range *list {
			if (*list)[i].ID == "" {
				(*list)[i].ID = store.NewID("cd")
			}
		}
	}
	if v.Socials == nil {
		v.Socials = []vcard.SocialLink{}
	}
	for i := range v.Socials {
		if v.Socials[i].ID == "" {
			v.Socials[i].ID = store.NewID("social")
		}
	}
}
