// Package storetest holds the behavioural contract every repository.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/swiss/internal/adapters/repository"
	"github.com/okian/swiss/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Factory returns an empty store. It is called once per leaf scenario.
type Factory func(t *testing.T) repository.Store

// Run exercises store against the repository.Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := newStore(t)

		Convey("Then it should count zero competitors and have no standings", func() {
			n, err := store.CountCompetitors(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)

			rows, err := store.AllStandingsRaw(ctx)
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})

		Convey("When registering competitors", func() {
			names := []string{"Ada", "Bo", "Cy", "Ada"}
			ids := make([]int64, 0, len(names))
			for _, name := range names {
				id, err := store.AddCompetitor(ctx, name)
				So(err, ShouldBeNil)
				ids = append(ids, id)
			}

			Convey("Then ids should be unique and increasing", func() {
				for i := 1; i < len(ids); i++ {
					So(ids[i], ShouldBeGreaterThan, ids[i-1])
				}
			})

			Convey("And the count should match", func() {
				n, err := store.CountCompetitors(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, len(names))
			})

			Convey("And every competitor should have a zero record", func() {
				rows, err := store.AllStandingsRaw(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, len(names))
				for i, row := range rows {
					So(row.ID, ShouldEqual, ids[i])
					So(row.Name, ShouldEqual, names[i])
					So(row.Wins, ShouldEqual, 0)
					So(row.Matches, ShouldEqual, 0)
				}
			})

			Convey("And HasCompetitor should find them", func() {
				ok, err := store.HasCompetitor(ctx, ids[0])
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)

				ok, err = store.HasCompetitor(ctx, ids[len(ids)-1]+100)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})

			Convey("And recording matches should aggregate wins and matches", func() {
				So(store.RecordMatch(ctx, ids[0], ids[1]), ShouldBeNil)
				So(store.RecordMatch(ctx, ids[0], ids[2]), ShouldBeNil)
				So(store.RecordMatch(ctx, ids[2], ids[1]), ShouldBeNil)

				rows, err := store.AllStandingsRaw(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 4)

				got := make(map[int64]model.StandingRow, len(rows))
				for _, row := range rows {
					got[row.ID] = row
				}
				So(got[ids[0]].Wins, ShouldEqual, 2)
				So(got[ids[0]].Matches, ShouldEqual, 2)
				So(got[ids[1]].Wins, ShouldEqual, 0)
				So(got[ids[1]].Matches, ShouldEqual, 2)
				So(got[ids[2]].Wins, ShouldEqual, 1)
				So(got[ids[2]].Matches, ShouldEqual, 2)
				So(got[ids[3]].Wins, ShouldEqual, 0)
				So(got[ids[3]].Matches, ShouldEqual, 0)
			})

			Convey("And a self match should be rejected by the store", func() {
				err := store.RecordMatch(ctx, ids[0], ids[0])
				So(errors.Is(err, repository.ErrSameCompetitor), ShouldBeTrue)
			})

			Convey("And a match against an unknown id should be rejected by the store", func() {
				err := store.RecordMatch(ctx, ids[0], ids[len(ids)-1]+100)
				So(errors.Is(err, repository.ErrCompetitorNotFound), ShouldBeTrue)

				rows, err := store.AllStandingsRaw(ctx)
				So(err, ShouldBeNil)
				for _, row := range rows {
					So(row.Matches, ShouldEqual, 0)
				}
			})

			Convey("And resetting matches should keep competitors", func() {
				So(store.RecordMatch(ctx, ids[0], ids[1]), ShouldBeNil)
				So(store.ResetMatches(ctx), ShouldBeNil)

				rows, err := store.AllStandingsRaw(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 4)
				for _, row := range rows {
					So(row.Matches, ShouldEqual, 0)
				}
			})

			Convey("And resetting both collections should empty the store without reusing ids", func() {
				So(store.RecordMatch(ctx, ids[0], ids[1]), ShouldBeNil)
				So(store.ResetMatches(ctx), ShouldBeNil)
				So(store.ResetCompetitors(ctx), ShouldBeNil)

				n, err := store.CountCompetitors(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)

				id, err := store.AddCompetitor(ctx, "Dee")
				So(err, ShouldBeNil)
				So(id, ShouldBeGreaterThan, ids[len(ids)-1])
			})

			Convey("And ResetAll should clear everything when supported", func() {
				resetter, ok := store.(repository.Resetter)
				if !ok {
					return
				}
				So(store.RecordMatch(ctx, ids[0], ids[1]), ShouldBeNil)
				So(resetter.ResetAll(ctx), ShouldBeNil)

				n, err := store.CountCompetitors(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)

				rows, err := store.AllStandingsRaw(ctx)
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})
	})
}
