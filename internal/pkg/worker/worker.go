package worker

import (
	"log"
	"time"
)

// EvaluateTask 异步审核任务
type EvaluateTask struct {
	PostID string
	Retry  int // 重试次数
}

// Pool 审核评估协程池
// Evaluate 由 moderation 模块注入：加载帖子、跑规则链、落库
type Pool struct {
	TaskQueue  chan EvaluateTask
	RetryQueue chan EvaluateTask // 重试队列
	Evaluate   func(postID string) error
	WorkerNum  int
	MaxRetry   int // 最大重试次数
}

func NewPool(evaluate func(postID string) error, workerNum int, bufferSize int) *Pool {
	return &Pool{
		TaskQueue:  make(chan EvaluateTask, bufferSize),
		RetryQueue: make(chan EvaluateTask, bufferSize/2),
		Evaluate:   evaluate,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	log.Printf("Moderation worker pool started with %d workers", p.WorkerNum)
}

func (p *Pool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.Evaluate(task.PostID); err != nil {
			log.Printf("[Worker %d] Failed to evaluate post %s: %v", id, task.PostID, err)

			// 如果未达到最大重试次数，加入重试队列
			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
					log.Printf("[Worker %d] Task added to retry queue (attempt %d/%d)",
						id, task.Retry, p.MaxRetry)
				default:
					log.Printf("[Worker %d] Retry queue full, task dropped: %+v", id, task)
					p.logFailedTask(task, err)
				}
			} else {
				log.Printf("[Worker %d] Task exceeded max retries, dropped: %+v", id, task)
				p.logFailedTask(task, err)
			}
		}
	}
}

func (p *Pool) retryWorker() {
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * time.Second)

		// 重新加入主队列
		select {
		case p.TaskQueue <- task:
			log.Printf("[RetryWorker] Task re-queued (attempt %d/%d)", task.Retry, p.MaxRetry)
		default:
			log.Printf("[RetryWorker] Main queue full, task dropped: %+v", task)
			p.logFailedTask(task, nil)
		}
	}
}

func (p *Pool) logFailedTask(task EvaluateTask, err error) {
	// 帖子保持 pending，等待管理员人工处理
	log.Printf("[DeadLetter] Evaluation failed permanently: PostID=%s, Error=%v", task.PostID, err)
}

func (p *Pool) AddTask(task EvaluateTask) {
	select {
	case p.TaskQueue <- task:
		// 任务入队成功
	default:
		log.Printf("Moderation pool queue full, dropping task: %+v", task)
		p.logFailedTask(task, nil)
	}
}
