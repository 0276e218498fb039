package board_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/projboard/projboard/internal/client"
	"github.com/projboard/projboard/internal/event"
	"github.com/projboard/projboard/internal/view"
	"github.com/projboard/projboard/pkg/types"
)

func cardPayload(id string) *view.DataTransfer {
	dt := view.NewDataTransfer()
	dt.SetData(view.PayloadType, id)
	return dt
}

func listIDs(status types.ProjectStatus) []string {
	projects, err := api.Projects(ctx, &status)
	Expect(err).NotTo(HaveOccurred())
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}

var _ = Describe("Project board", func() {
	Describe("submitting the form", func() {
		It("adds the project to the active list", func() {
			p, err := api.AddProject(ctx, view.FormValues{
				Title:       "Build API",
				Description: "Design and implement",
				People:      "3",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(types.StatusActive))
			Expect(p.People).To(Equal(3))

			html, err := api.ListHTML(ctx, types.StatusActive)
			Expect(err).NotTo(HaveOccurred())
			Expect(html).To(ContainSubstring("ACTIVE PROJECTS"))
			Expect(html).To(ContainSubstring("Build API"))
			Expect(html).To(ContainSubstring("3 persons assigned"))
			Expect(html).To(ContainSubstring(`id="` + p.ID + `"`))

			Expect(listIDs(types.StatusActive)).To(ContainElement(p.ID))
		})

		It("uses the singular label for one person", func() {
			p, err := api.AddProject(ctx, view.FormValues{
				Title:       "Solo task",
				Description: "One person only",
				People:      "1",
			})
			Expect(err).NotTo(HaveOccurred())

			html, err := api.ListHTML(ctx, types.StatusActive)
			Expect(err).NotTo(HaveOccurred())
			Expect(html).To(ContainSubstring("1 person assigned"))
			Expect(listIDs(types.StatusActive)).To(ContainElement(p.ID))
		})

		DescribeTable("rejects invalid input without changing the board",
			func(values view.FormValues) {
				before := testServer.Store.Len()

				_, err := api.AddProject(ctx, values)
				Expect(err).To(HaveOccurred())

				var apiErr *client.APIError
				Expect(errors.As(err, &apiErr)).To(BeTrue())
				Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(apiErr.Code).To(Equal("INVALID_INPUT"))
				Expect(apiErr.Message).To(Equal(view.InvalidInputMessage))

				Expect(testServer.Store.Len()).To(Equal(before))
			},
			Entry("blank title", view.FormValues{Title: "  ", Description: "Design and implement", People: "3"}),
			Entry("short description", view.FormValues{Title: "Build API", Description: "abc", People: "3"}),
			Entry("no people", view.FormValues{Title: "Build API", Description: "Design and implement", People: "0"}),
			Entry("too many people", view.FormValues{Title: "Build API", Description: "Design and implement", People: "6"}),
			Entry("people not a number", view.FormValues{Title: "Build API", Description: "Design and implement", People: "many"}),
		)
	})

	Describe("dragging a card between lists", func() {
		var project *types.Project

		BeforeEach(func() {
			var err error
			project, err = api.AddProject(ctx, view.FormValues{
				Title:       "Ship release",
				Description: "Tag and publish",
				People:      "2",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("moves the project when dropped on the finished list", func() {
			Expect(api.Drop(ctx, types.StatusFinished, cardPayload(project.ID))).To(Succeed())

			got, err := api.Project(ctx, project.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(types.StatusFinished))

			Expect(listIDs(types.StatusFinished)).To(ContainElement(project.ID))
			Expect(listIDs(types.StatusActive)).NotTo(ContainElement(project.ID))

			finished, err := api.ListHTML(ctx, types.StatusFinished)
			Expect(err).NotTo(HaveOccurred())
			Expect(finished).To(ContainSubstring("Ship release"))
			Expect(finished).NotTo(ContainSubstring("droppable"))

			active, err := api.ListHTML(ctx, types.StatusActive)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).NotTo(ContainSubstring(`id="` + project.ID + `"`))
		})

		It("leaves the project in place when dropped on its own list", func() {
			Expect(api.Drop(ctx, types.StatusActive, cardPayload(project.ID))).To(Succeed())

			got, err := api.Project(ctx, project.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(types.StatusActive))
		})

		It("refuses a payload that is not a project card", func() {
			dt := view.NewDataTransfer()
			dt.SetData("text/uri-list", "https://example.com")

			err := api.Drop(ctx, types.StatusFinished, dt)
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusUnsupportedMediaType))
			Expect(apiErr.Code).To(Equal("UNSUPPORTED_PAYLOAD"))

			got, err := api.Project(ctx, project.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(types.StatusActive))
		})

		It("ignores a drop carrying an unknown project id", func() {
			before, err := api.Projects(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(api.Drop(ctx, types.StatusFinished, cardPayload("prj_missing"))).To(Succeed())

			after, err := api.Projects(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before))
		})

		It("moves the project back with the move endpoint", func() {
			moved, err := api.MoveProject(ctx, project.ID, types.StatusFinished)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved).To(BeTrue())

			moved, err = api.MoveProject(ctx, project.ID, types.StatusActive)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved).To(BeTrue())

			Expect(listIDs(types.StatusActive)).To(ContainElement(project.ID))
		})
	})

	Describe("GET /", func() {
		It("serves the board page with both lists and the form", func() {
			resp, err := http.Get(testServer.BaseURL + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/html"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`id="user-input"`))
			Expect(string(body)).To(ContainSubstring(`id="active-projects"`))
			Expect(string(body)).To(ContainSubstring(`id="finished-projects"`))
		})
	})

	Describe("event stream", func() {
		It("delivers list renders after a change", func() {
			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			var (
				mu    sync.Mutex
				seen  []client.Event
				errCh = make(chan error, 1)
			)
			go func() {
				errCh <- api.Watch(watchCtx, func(e client.Event) error {
					mu.Lock()
					seen = append(seen, e)
					mu.Unlock()
					return nil
				})
			}()

			eventTypes := func() []string {
				mu.Lock()
				defer mu.Unlock()
				out := make([]string, 0, len(seen))
				for _, e := range seen {
					out = append(out, e.Type)
				}
				return out
			}

			Eventually(eventTypes, 5*time.Second, 20*time.Millisecond).
				Should(ContainElement(string(event.ServerConnected)))

			_, err := api.AddProject(ctx, view.FormValues{
				Title:       "Watch me",
				Description: "Streamed over SSE",
				People:      "4",
			})
			Expect(err).NotTo(HaveOccurred())

			Eventually(eventTypes, 5*time.Second, 20*time.Millisecond).Should(SatisfyAll(
				ContainElement(string(event.ListRendered)),
				ContainElement(string(event.ProjectsUpdated)),
			))

			cancel()
			Eventually(errCh, 5*time.Second).Should(Receive(BeNil()))
		})
	})
})
