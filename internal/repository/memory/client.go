package memory

import (
	"context"
	"sort"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

type clientRepo struct {
	*handle
}

func (r clientRepo) GetByID(_ context.Context, id int64) (*model.Client, error) {
	var out *model.Client
	err := r.with(func(st *state) error {
		c, ok := st.clients[id]
		if !ok {
			return errors.NotFound("client", nil)
		}
		out = r.store.projectClient(c)
		return nil
	})
	return out, err
}

func (r clientRepo) GetByUserID(_ context.Context, userID int64) (*model.Client, error) {
	var out *model.Client
	err := r.with(func(st *state) error {
		for _, c := range st.clients {
			if c.UserID != nil && *c.UserID == userID {
				out = r.store.projectClient(c)
				return nil
			}
		}
		return errors.NotFound("client", nil)
	})
	return out, err
}

func (r clientRepo) Find(_ context.Context, q repository.Query) (model.Page[*model.Client], error) {
	var page model.Page[*model.Client]
	if err := q.Check(model.ResourceClients); err != nil {
		return page, err
	}
	err := r.with(func(st *state) error {
		items := make([]*model.Client, 0)
		for _, c := range st.clients {
			rec := r.store.projectClient(c)
			ok, err := matches(st, q, rec)
			if err != nil {
				return err
			}
			if ok {
				items = append(items, rec)
			}
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].Name != items[j].Name {
				return items[i].Name < items[j].Name
			}
			return items[i].ID < items[j].ID
		})
		page = paginate(items, q.Page)
		return nil
	})
	return page, err
}

func (r clientRepo) Update(_ context.Context, client *model.Client) error {
	return r.with(func(st *state) error {
		existing, ok := st.clients[client.ID]
		if !ok {
			return errors.NotFound("client", nil)
		}
		existing.Name = client.Name
		existing.Email = client.Email
		existing.Phone = client.Phone
		st.clients[client.ID] = existing
		return nil
	})
}

type appointmentRepo struct {
	*handle
}

func (r appointmentRepo) GetByID(_ context.Context, id int64) (*model.Appointment, error) {
	var out *model.Appointment
	err := r.with(func(st *state) error {
		a, ok := st.appointments[id]
		if !ok {
			return errors.NotFound("appointment", nil)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r appointmentRepo) Find(_ context.Context, q repository.Query) (model.Page[*model.Appointment], error) {
	var page model.Page[*model.Appointment]
	if err := q.Check(model.ResourceAppointments); err != nil {
		return page, err
	}
	err := r.with(func(st *state) error {
		items := make([]*model.Appointment, 0)
		for _, a := range st.appointments {
			a := a
			ok, err := matches(st, q, &a)
			if err != nil {
				return err
			}
			if ok {
				items = append(items, &a)
			}
		}
		sort.Slice(items, func(i, j int) bool {
			if !items[i].StartsAt.Equal(items[j].StartsAt) {
				return items[i].StartsAt.After(items[j].StartsAt)
			}
			return items[i].ID > items[j].ID
		})
		page = paginate(items, q.Page)
		return nil
	})
	return page, err
}
