package runner

import (
	"context"
	"sync"
)

// Pool — ограниченный пул воркеров с явным жизненным циклом: поднимается на
// старте приложения, гасится на остановке. Никакого глобального состояния.
type Pool struct {
	workers int
	jobs    chan func()

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan func(), 64),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
}

// Submit ставит задачу в очередь; блокируется, если очередь полна.
// Возвращает false, если ctx отменили раньше.
func (p *Pool) Submit(ctx context.Context, job func()) bool {
	select {
	case p.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop закрывает очередь и ждёт, пока воркеры дожуют начатое.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
