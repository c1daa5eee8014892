package sandbox_test

import (
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sandbox/internal/config"
	"github.com/san-kum/sandbox/internal/physics"
	"github.com/san-kum/sandbox/internal/sandbox"
)

var _ = Describe("Simulation", func() {
	var (
		sim  *sandbox.Simulation
		src  *sandbox.ManualSource
		loop *sandbox.FrameLoop
	)

	advance := func(frames int) {
		for i := 0; i < frames; i++ {
			src.Advance(1.0 / 60.0)
			Expect(loop.RunFrame()).To(Succeed())
		}
	}

	BeforeEach(func() {
		cfg := config.DefaultConfig()
		cfg.Spawn.Initial = nil
		src = sandbox.NewManualSource()

		var err error
		sim, err = sandbox.New(cfg, nil, log.New(io.Discard), sandbox.WithTimeSource(src))
		Expect(err).NotTo(HaveOccurred())
		loop = sandbox.NewFrameLoop(sim)
	})

	Describe("spawning", func() {
		DescribeTable("spheres register one pair at the requested position",
			func(radius float64, x, y, z float64) {
				pos := mgl64.Vec3{x, y, z}
				pair, err := sim.Factory().CreateSphere(radius, pos)
				Expect(err).NotTo(HaveOccurred())

				Expect(sim.Registry().Len()).To(Equal(1))
				Expect(pair.Body.Position).To(Equal(pos))
				Expect(pair.Body.Shape).To(Equal(&physics.Sphere{Radius: radius}))
			},
			Entry("small sphere high up", 0.1, 0.0, 5.0, 0.0),
			Entry("default sphere", 0.5, 0.0, 3.0, 0.0),
			Entry("off-center sphere", 0.3, -1.2, 2.0, 0.7),
		)

		DescribeTable("boxes get half of each dimension",
			func(w, h, d float64) {
				pair, err := sim.Factory().CreateBox(w, h, d, mgl64.Vec3{0, 3, 0})
				Expect(err).NotTo(HaveOccurred())
				Expect(pair.Body.Shape).To(Equal(&physics.Box{HalfExtents: mgl64.Vec3{w / 2, h / 2, d / 2}}))
			},
			Entry("cube", 1.0, 1.0, 1.0),
			Entry("plank", 2.0, 0.2, 0.5),
		)

		It("rejects invalid dimensions without registering anything", func() {
			_, err := sim.Factory().CreateSphere(0, mgl64.Vec3{0, 3, 0})
			Expect(err).To(MatchError(sandbox.ErrInvalidShapeParameters))

			_, err = sim.Factory().CreateBox(-1, 1, 1, mgl64.Vec3{0, 3, 0})
			Expect(err).To(MatchError(sandbox.ErrInvalidShapeParameters))

			Expect(sim.Registry().Len()).To(BeZero())
		})

		It("rejects non-finite positions", func() {
			_, err := sim.Factory().CreateSphere(0.5, mgl64.Vec3{0, math.NaN(), 0})
			Expect(err).To(MatchError(sandbox.ErrInvalidSpawnPosition))
			Expect(sim.Registry().Len()).To(BeZero())
		})
	})

	Describe("running frames", func() {
		BeforeEach(func() {
			_, err := sim.Factory().CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
			Expect(err).NotTo(HaveOccurred())
			_, err = sim.Factory().CreateBox(0.4, 0.6, 0.4, mgl64.Vec3{0.3, 4.5, -0.2})
			Expect(err).NotTo(HaveOccurred())
		})

		It("leaves meshes matching their bodies after every frame", func() {
			for i := 0; i < 180; i++ {
				advance(1)
				for p := range sim.Registry().All() {
					Expect(p.Mesh.Position).To(Equal(p.Body.Position))
					Expect(p.Mesh.Quaternion).To(Equal(p.Body.Quaternion))
				}
			}
		})

		It("moves nothing when no time has passed", func() {
			before := make([]mgl64.Vec3, 0)
			for p := range sim.Registry().All() {
				before = append(before, p.Mesh.Position)
			}
			for i := 0; i < 10; i++ {
				Expect(loop.RunFrame()).To(Succeed())
			}
			i := 0
			for p := range sim.Registry().All() {
				Expect(p.Mesh.Position).To(Equal(before[i]))
				i++
			}
		})

		It("never moves the floor", func() {
			floor := sim.Floor()
			pos, q := floor.Body.Position, floor.Body.Quaternion
			advance(300)
			Expect(floor.Body.Position).To(Equal(pos))
			Expect(floor.Body.Quaternion).To(Equal(q))
		})
	})

	It("settles a dropped sphere on the floor", func() {
		pair, err := sim.Factory().CreateSphere(0.5, mgl64.Vec3{0, 3, 0})
		Expect(err).NotTo(HaveOccurred())

		surface := sim.Floor().Body.AABB().Max[1]
		for i := 0; i < 300; i++ {
			advance(1)
			Expect(pair.Body.Position[1]).To(BeNumerically(">=", surface+0.5-0.05))
		}
		Expect(pair.Body.Position[1]).To(BeNumerically("~", surface+0.5, 0.03))
	})

	It("never exposes a partially built pair to a running frame", func() {
		check := &pairCheck{sim: sim}
		sim.AddObserver(check)

		var wg sync.WaitGroup
		for g := 0; g < 3; g++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < 20; i++ {
					_, err := sim.Factory().CreateSphere(0.2, mgl64.Vec3{0, 3 + float64(i), 0})
					Expect(err).NotTo(HaveOccurred())
				}
			}()
		}
		advance(60)
		wg.Wait()
		advance(1)

		Expect(check.partial).To(BeZero())
		Expect(check.frames).To(Equal(61))
		Expect(sim.Registry().Len()).To(Equal(60))
	})
})

// pairCheck runs inside frames and counts pairs that are not fully attached.
type pairCheck struct {
	sim     *sandbox.Simulation
	frames  int
	partial int
}

func (c *pairCheck) OnFrame(_ uint64, _ float64, r *sandbox.Registry) {
	c.frames++
	for p := range r.All() {
		if p.Body == nil || p.Mesh == nil || !c.sim.World().HasBody(p.Body) || !c.sim.Scene().Contains(p.Mesh) {
			c.partial++
		}
	}
}
