package repository_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/comfortloop/internal/adapters/repository"
	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.InitWithWriter(io.Discard)
}

type storeFactory struct {
	name string
	open func(t *testing.T) repository.Store
}

func factories() []storeFactory {
	return []storeFactory{
		{"memory", func(_ *testing.T) repository.Store { return repository.NewMemoryStore() }},
		{"bolt", func(t *testing.T) repository.Store {
			s, err := repository.NewBoltStore(filepath.Join(t.TempDir(), "comfort.db"))
			if err != nil {
				t.Fatalf("open bolt: %v", err)
			}
			return s
		}},
		{"sqlite", func(_ *testing.T) repository.Store {
			s, err := repository.NewSQLiteMemoryStore()
			if err != nil {
				panic(err)
			}
			return s
		}},
		{"sqlite file", func(t *testing.T) repository.Store {
			s, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "db", "comfort.sqlite"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			return s
		}},
		{"instrumented memory", func(_ *testing.T) repository.Store {
			return repository.Instrument(repository.NewMemoryStore())
		}},
	}
}

func record(c model.Classification, at time.Time) model.FeedbackRecord {
	return model.FeedbackRecord{Source: model.SourceEstimate, Classification: c, CreatedAt: at}
}

func TestStores(t *testing.T) {
	for _, f := range factories() {
		Convey("Given a "+f.name+" store", t, func() {
			ctx := context.Background()
			s := f.open(t)
			defer s.Close()
			base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

			So(s.Ping(ctx), ShouldBeNil)
			So(s.Name(), ShouldNotBeEmpty)

			Convey("When feedback is appended out of order", func() {
				for i, c := range []model.Classification{model.Hot, model.Cold, model.Good, model.Hot} {
					_, err := s.AppendFeedback(ctx, record(c, base.Add(time.Duration(i)*time.Minute)))
					So(err, ShouldBeNil)
				}
				_, err := s.AppendFeedback(ctx, record(model.Cold, base.Add(-time.Hour)))
				So(err, ShouldBeNil)

				Convey("Then RecentFeedback returns the newest first", func() {
					recs, err := s.RecentFeedback(ctx, 3)
					So(err, ShouldBeNil)
					So(len(recs), ShouldEqual, 3)
					So(recs[0].Classification, ShouldEqual, model.Hot)
					So(recs[1].Classification, ShouldEqual, model.Good)
					So(recs[2].Classification, ShouldEqual, model.Cold)
					So(recs[0].CreatedAt.Equal(base.Add(3*time.Minute)), ShouldBeTrue)
					So(recs[0].ID, ShouldNotBeEmpty)
				})

				Convey("Then asking for more than exists returns everything", func() {
					recs, err := s.RecentFeedback(ctx, 50)
					So(err, ShouldBeNil)
					So(len(recs), ShouldEqual, 5)
					So(recs[4].CreatedAt.Equal(base.Add(-time.Hour)), ShouldBeTrue)
				})
			})

			Convey("When records share a timestamp", func() {
				_, _ = s.AppendFeedback(ctx, record(model.Cold, base))
				_, _ = s.AppendFeedback(ctx, record(model.Hot, base))

				Convey("Then the later insert is newer", func() {
					recs, err := s.RecentFeedback(ctx, 1)
					So(err, ShouldBeNil)
					So(recs[0].Classification, ShouldEqual, model.Hot)
				})
			})

			Convey("When a controller record with optional fields is stored", func() {
				action := "humidity_check, temp_down"
				rec := model.FeedbackRecord{
					Source:         model.SourceController,
					Classification: model.Hot,
					CurrentTemp:    model.Float(21.0),
					TargetTemp:     model.Float(20.5),
					TargetHumidity: model.Float(60),
					ActionTaken:    &action,
					CreatedAt:      base,
				}
				_, err := s.AppendFeedback(ctx, rec)
				So(err, ShouldBeNil)

				Convey("Then nulls and values survive the round trip", func() {
					recs, err := s.RecentFeedback(ctx, 1)
					So(err, ShouldBeNil)
					got := recs[0]
					So(got.Source, ShouldEqual, model.SourceController)
					So(*got.CurrentTemp, ShouldEqual, 21.0)
					So(*got.TargetTemp, ShouldEqual, 20.5)
					So(got.CurrentHumidity, ShouldBeNil)
					So(got.PredictedSkinTemp, ShouldBeNil)
					So(*got.ActionTaken, ShouldEqual, action)
				})
			})

			Convey("When an invalid record or limit is used", func() {
				_, err := s.AppendFeedback(ctx, model.FeedbackRecord{})
				So(errors.Is(err, model.ErrUnknownClassification), ShouldBeTrue)

				_, err = s.RecentFeedback(ctx, 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})

			Convey("When no comfort range is configured", func() {
				_, err := s.ComfortRange(ctx)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

				Convey("And one is saved", func() {
					saved, err := s.SaveComfortRange(ctx, model.ComfortRange{MinTemp: 20.5, MaxTemp: 22.5})
					So(err, ShouldBeNil)
					So(saved.CreatedAt.IsZero(), ShouldBeFalse)

					got, err := s.ComfortRange(ctx)
					So(err, ShouldBeNil)
					So(got.MinTemp, ShouldEqual, 20.5)
					So(got.MaxTemp, ShouldEqual, 22.5)

					Convey("Then a second save is refused and the original kept", func() {
						existing, err := s.SaveComfortRange(ctx, model.ComfortRange{MinTemp: 18, MaxTemp: 20})
						So(errors.Is(err, repository.ErrAlreadyConfigured), ShouldBeTrue)
						So(existing.MinTemp, ShouldEqual, 20.5)

						got, _ := s.ComfortRange(ctx)
						So(got.MinTemp, ShouldEqual, 20.5)
					})

					Convey("Then an explicit reset allows a new range", func() {
						So(s.ResetComfortRange(ctx), ShouldBeNil)
						_, err := s.SaveComfortRange(ctx, model.ComfortRange{MinTemp: 18, MaxTemp: 20})
						So(err, ShouldBeNil)
					})
				})

				Convey("And an invalid range is offered", func() {
					_, err := s.SaveComfortRange(ctx, model.ComfortRange{MinTemp: 22, MaxTemp: 20})
					So(errors.Is(err, model.ErrInvalidComfortRange), ShouldBeTrue)
				})
			})

			Convey("When controller state is saved", func() {
				st, err := s.ControllerState(ctx)
				So(err, ShouldBeNil)
				So(st.LastAdjustmentTime, ShouldBeNil)

				last := base.Add(90 * time.Minute)
				So(s.SaveControllerState(ctx, model.ControllerState{LastAdjustmentTime: &last}), ShouldBeNil)

				Convey("Then it is read back", func() {
					st, err := s.ControllerState(ctx)
					So(err, ShouldBeNil)
					So(st.LastAdjustmentTime.Equal(last), ShouldBeTrue)
				})
			})

			Convey("When occupant votes are appended", func() {
				_, err := s.AppendUserFeedback(ctx, model.UserFeedback{Vote: model.VoteHot, CreatedAt: base})
				So(err, ShouldBeNil)
				_, err = s.AppendUserFeedback(ctx, model.UserFeedback{Vote: model.VoteComfortable, CreatedAt: base.Add(time.Minute)})
				So(err, ShouldBeNil)

				Convey("Then they are listed newest first", func() {
					votes, err := s.RecentUserFeedback(ctx, 10)
					So(err, ShouldBeNil)
					So(len(votes), ShouldEqual, 2)
					So(votes[0].Vote, ShouldEqual, model.VoteComfortable)
					So(votes[1].Date.Equal(base), ShouldBeTrue)
				})
			})

			Convey("When appends and reads race", func() {
				var wg sync.WaitGroup
				for i := 0; i < 20; i++ {
					wg.Add(2)
					go func(i int) {
						defer wg.Done()
						_, _ = s.AppendFeedback(ctx, record(model.Good, base.Add(time.Duration(i)*time.Second)))
					}(i)
					go func() {
						defer wg.Done()
						_, _ = s.RecentFeedback(ctx, 3)
					}()
				}
				wg.Wait()

				Convey("Then every append lands", func() {
					recs, err := s.RecentFeedback(ctx, 100)
					So(err, ShouldBeNil)
					So(len(recs), ShouldEqual, 20)
				})
			})
		})
	}
}

func TestBoltStateSurvivesReopen(t *testing.T) {
	Convey("Given a bolt file with a comfort range and controller state", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "comfort.db")
		last := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

		s, err := repository.NewBoltStore(path)
		So(err, ShouldBeNil)
		_, err = s.SaveComfortRange(ctx, model.ComfortRange{MinTemp: 19, MaxTemp: 21})
		So(err, ShouldBeNil)
		So(s.SaveControllerState(ctx, model.ControllerState{LastAdjustmentTime: &last}), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When it is reopened", func() {
			s, err := repository.NewBoltStore(path)
			So(err, ShouldBeNil)
			defer s.Close()

			Convey("Then both are restored", func() {
				r, err := s.ComfortRange(ctx)
				So(err, ShouldBeNil)
				So(r.MaxTemp, ShouldEqual, 21)

				st, err := s.ControllerState(ctx)
				So(err, ShouldBeNil)
				So(st.LastAdjustmentTime.Equal(last), ShouldBeTrue)
			})
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given the store factory", t, func() {
		s, err := repository.Open(repository.DriverMemory, "")
		So(err, ShouldBeNil)
		So(s.Name(), ShouldEqual, "memory")

		_, err = repository.Open("postgres", "")
		So(err, ShouldNotBeNil)
	})
}
